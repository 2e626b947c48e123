package transcript

import (
	"regexp"
	"strings"
)

// headerPattern matches the spoken-line header Teams puts in front of each
// dialogue line: an HH:MM:SS timestamp (1-2 digits per field, so 1:2:3 and
// 01:02:03 both match), an optional AM/PM marker, and an optional speaker
// label terminated by the first colon.
var headerPattern = regexp.MustCompile(`^\s*\d{1,2}:\d{1,2}:\d{1,2}(?:\s*(?i:AM|PM))?\s*(?:[^:]+:\s*)?`)

// Normalize flattens a raw meeting transcript into a single utterance
// string. Each line loses its timestamp/speaker header, internal whitespace
// runs collapse to single spaces, lines left empty are dropped, and the
// survivors are joined with one space. Lines without a recognizable
// timestamp pass through with only the whitespace collapse. The transform
// is idempotent.
func Normalize(raw string) string {
	var cleaned []string
	for _, line := range strings.Split(raw, "\n") {
		line = headerPattern.ReplaceAllString(line, "")
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, " ")
}
