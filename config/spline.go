package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kpnflow/dse/search/designcenter"
)

// ParseSplinePoints parses a "x:y,x:y,..." support-point list into the
// []designcenter.SplinePoint shape the design-centering engine's
// PTarget/StepWidth config fields expect (spec.md §4.4.5: "both
// cubic-spline interpolated from config support points").
func ParseSplinePoints(raw string) ([]designcenter.SplinePoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("spline points: empty list")
	}

	parts := strings.Split(raw, ",")
	points := make([]designcenter.SplinePoint, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)

		xy := strings.SplitN(part, ":", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("spline points: %q: want \"x:y\"", part)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("spline points: %q: x: %w", part, err)
		}

		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("spline points: %q: y: %w", part, err)
		}

		points = append(points, designcenter.SplinePoint{X: x, Y: y})
	}

	return points, nil
}
