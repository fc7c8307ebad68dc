package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/welling-fm/fireinspect/internal/report"
)

const (
	// EmergencyLightDevice names lights listed by circuit only
	EmergencyLightDevice = "Emergency Light"
	// NoLocation is used when a light line has a circuit but no location
	NoLocation = "See circuit location"

	maxLocationRunes = 150
)

var (
	zonePattern      = regexp.MustCompile(`^(\d+|N/A|Local Only)`)
	lightPattern     = regexp.MustCompile(`(?i)(EM-?\d+|EXIT\s*LI[TG]E?S?)\s+([A-Z]-\d+)?\s*(.+)?`)
	checkWordPattern = regexp.MustCompile(`(?i)^(?:(?:Yes|No|Good)\b|\s)+`)
	circuitPattern   = regexp.MustCompile(`^[A-Z]-\d+`)
)

// parseDevice reads one device table row. The location is the text before
// the matched code and the zone the token right after it.
func (p *Parser) parseDevice(line string) (report.Device, bool) {
	m, ok := p.devices.Match(line)
	if !ok {
		return report.Device{}, false
	}

	location := cleanLocation(strings.TrimSpace(line[:m.Start]))
	zone := zonePattern.FindString(strings.TrimSpace(line[m.End:]))

	n := utf8.RuneCountInString(location)
	if n <= 1 || n >= maxLocationRunes {
		return report.Device{}, false
	}
	if strings.Contains(location, "Legend") || strings.Contains(location, "Installed") || location == "X" {
		return report.Device{}, false
	}

	return report.Device{
		Location: location,
		Type:     m.Code,
		TypeName: m.Name,
		Zone:     zone,
		Status:   report.StatusPass,
	}, true
}

// cleanLocation drops a leading run of bullets, dashes, asterisks, digits and
// whitespace when a letter follows it, so "• 12 Foyer" becomes "Foyer" while
// "(5) Closet" is left alone.
func cleanLocation(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !isLocationPrefixRune(r) {
			break
		}
		end += size
	}
	if end == 0 || end == len(s) || !isASCIILetter(s[end]) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[end:])
}

func isLocationPrefixRune(r rune) bool {
	switch {
	case r == '•', r == '-', r == '*':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// stripCheckWords removes the Yes/No/Good check columns that precede a light's
// location. Only whole words are removed.
func stripCheckWords(s string) string {
	return strings.TrimSpace(checkWordPattern.ReplaceAllString(s, ""))
}

// parseLight reads one emergency light row. When the row has no EM or EXIT
// token and standalone circuits are enabled, a leading circuit such as "B-11"
// is enough.
func (p *Parser) parseLight(line string) (report.Light, bool) {
	if m := lightPattern.FindStringSubmatch(line); m != nil {
		device := strings.TrimSpace(m[1])
		circuit := strings.TrimSpace(m[2])
		location := stripCheckWords(strings.TrimSpace(m[3]))
		if device == "" || (circuit == "" && location == "") {
			return report.Light{}, false
		}
		if location == "" {
			location = NoLocation
		}
		return report.Light{
			Device:   device,
			Circuit:  circuit,
			Location: location,
			Status:   report.StatusPass,
		}, true
	}

	if !p.opts.StandaloneCircuits || !circuitPattern.MatchString(line) {
		return report.Light{}, false
	}
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return report.Light{}, false
	}
	location := stripCheckWords(strings.Join(parts[1:], " "))
	if utf8.RuneCountInString(location) <= 2 {
		return report.Light{}, false
	}
	return report.Light{
		Device:   EmergencyLightDevice,
		Circuit:  parts[0],
		Location: location,
		Status:   report.StatusPass,
	}, true
}
