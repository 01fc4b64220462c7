package util

import (
	"fmt"
	"math"

	"gopkg.in/Knetic/govaluate.v2"
)

// FormatSeconds renders seconds as an ffmpeg HH:MM:SS.mmm timestamp
func FormatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// ParseFrameRate evaluates an ffprobe frame rate such as "30/1" or
// "30000/1001". Zero is returned for anything that is not a finite, positive
// number.
func ParseFrameRate(s string) float64 {
	if s == "" {
		return 0
	}

	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0
	}

	result, err := expr.Evaluate(map[string]interface{}{})
	if err != nil {
		return 0
	}

	fps, ok := result.(float64)
	if !ok || math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return 0
	}
	return fps
}
