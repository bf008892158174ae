package weather

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-apps-go/internal/errors"
	"github.com/wagiedev/mcp-apps-go/internal/mcp"
)

// ToolGetForecast is the name of the forecast tool.
const ToolGetForecast = "getforecast"

// ForecastRequest is the input of the getforecast tool.
type ForecastRequest struct {
	Latitude  string `json:"latitude" jsonschema:"Latitude of the location"`
	Longitude string `json:"longitude" jsonschema:"Longitude of the location"`
}

// Register adds the getforecast tool backed by client to ts.
func Register(ts *mcp.Toolset, client *Client) {
	openWorld := true

	mcp.AddTool(ts, &mcpgo.Tool{
		Name:        ToolGetForecast,
		Description: "Get real time weather forecast for a location",
		Annotations: &mcpgo.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: &openWorld,
		},
	}, forecastHandler(client))
}

func forecastHandler(client *Client) mcpgo.ToolHandlerFor[ForecastRequest, any] {
	return func(ctx context.Context, _ *mcpgo.CallToolRequest, in ForecastRequest) (*mcpgo.CallToolResult, any, error) {
		log := mcp.LoggerFromContext(ctx)
		log.Info("getforecast", "latitude", in.Latitude, "longitude", in.Longitude)

		lat, lon, err := ParseCoordinates(in.Latitude, in.Longitude)
		if err != nil {
			log.Warn("Rejected coordinates", "error", err)
			return mcp.ErrorResult(fmt.Sprintf("Invalid coordinates: %s, %s", in.Latitude, in.Longitude)), nil, nil
		}

		point, err := client.Points(ctx, lat, lon)
		if err != nil {
			log.Error("Failed to retrieve grid point data", "url", client.PointsURL(lat, lon), "error", err)

			return mcp.ErrorResult(fmt.Sprintf(
				"Failed to retrieve grid point data for coordinates: %s, %s. "+
					"This location may not be supported by the NWS API (only US locations are supported).",
				in.Latitude, in.Longitude,
			)), nil, nil
		}

		forecastURL := point.Properties.Forecast
		if forecastURL == "" {
			log.Error("Grid point data has no forecast URL", "url", client.PointsURL(lat, lon))
			return mcp.ErrorResult("Failed to get forecast URL from grid point data"), nil, nil
		}

		forecast, err := client.Forecast(ctx, forecastURL)
		if err != nil {
			log.Error("Failed to retrieve forecast data", "url", forecastURL, "error", err)
			return mcp.ErrorResult("Failed to retrieve forecast data"), nil, nil
		}

		periods := forecast.Properties.Periods
		if len(periods) == 0 {
			return mcp.TextResult("No forecast periods available"), nil, nil
		}

		return mcp.TextResult(FormatForecast(in.Latitude, in.Longitude, periods)), nil, nil
	}
}

// ParseCoordinates parses latitude and longitude as decimal degrees.
// It fails with errors.ErrInvalidCoordinates for non-numeric or
// out-of-range values.
func ParseCoordinates(latitude, longitude string) (float64, float64, error) {
	lat, err := parseDegrees(latitude, 90)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q: %v", errors.ErrInvalidCoordinates, latitude, err)
	}

	lon, err := parseDegrees(longitude, 180)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q: %v", errors.ErrInvalidCoordinates, longitude, err)
	}

	return lat, lon, nil
}

func parseDegrees(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("out of range [-%g, %g]", limit, limit)
	}

	return v, nil
}
