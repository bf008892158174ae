package cli

import (
	"net"
	"strconv"
)

// portAddr returns ":PORT" when the PORT variable holds a valid TCP port.
func portAddr(lookupEnv func(string) (string, bool)) (string, bool) {
	value, ok := lookupEnv("PORT")
	if !ok || value == "" {
		return "", false
	}

	port, err := strconv.Atoi(value)
	if err != nil || port < 0 || port > 65535 {
		return "", false
	}

	return net.JoinHostPort("", value), true
}
