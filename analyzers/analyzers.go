// Package analyzers implements the signal-processing probes: metadata,
// watermark, frequency, noise, color, geometry, and the temporal and motion
// probes for video. Every analyzer is a stateless value built from the
// process configuration; Analyze methods are pure functions of their inputs
// and degrade to a benign zero result instead of failing.
package analyzers

import (
	"strings"
)

// lowerLatin1 decodes bytes as ISO 8859-1 and lowercases the result, the
// way container payloads are scanned for marker substrings.
func lowerLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return strings.ToLower(string(runes))
}

// matchAny returns the markers contained in haystack (already lowercased).
func matchAny(haystack string, markers []string) []string {
	var found []string
	for _, m := range markers {
		if strings.Contains(haystack, m) {
			found = append(found, m)
		}
	}
	return found
}
