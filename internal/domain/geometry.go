package domain

import (
	"math"
	"regexp"
	"strconv"
)

// pointRe matches WKT point geometry anywhere in a cell, capturing the
// longitude and latitude tokens: "POINT (-73.9656 40.7826)".
var pointRe = regexp.MustCompile(`POINT \(([^ ]+) ([^ ]+)\)`)

// ParsePoint extracts (lat, long) from a WKT point string. The first token
// is the longitude and the second the latitude. A non-matching string
// yields two nils; a token that is not a finite number yields nil for that
// coordinate only.
func ParsePoint(geometry string) (lat, long *float64) {
	matches := pointRe.FindStringSubmatch(geometry)
	if len(matches) != 3 {
		return nil, nil
	}
	return parseCoordinate(matches[2]), parseCoordinate(matches[1])
}

// parseCoordinate parses a numeric token, returning nil on failure.
func parseCoordinate(token string) *float64 {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
