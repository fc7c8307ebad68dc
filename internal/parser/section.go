package parser

import "strings"

// section is the part of a report the line scanner is in
type section int

const (
	sectionNone section = iota
	sectionDevices
	sectionLights
)

func (s section) String() string {
	switch s {
	case sectionDevices:
		return "devices"
	case sectionLights:
		return "lights"
	default:
		return "none"
	}
}

const deviceSectionHeader = "ANNUAL TEST AND INSPECTION RECORD"

var lightSectionHeaders = []string{
	"Annual Emergency Lights Test",
	"Lamp Test Pass",
	"Exit Lights",
}

// sectionHeader reports whether line opens a section and which one.
func sectionHeader(line string) (section, bool) {
	if strings.Contains(line, deviceSectionHeader) {
		return sectionDevices, true
	}
	for _, h := range lightSectionHeaders {
		if strings.Contains(line, h) {
			return sectionLights, true
		}
	}
	return sectionNone, false
}

var columnHeaderWords = []string{
	"Location",
	"Device",
	"Correctly Installed",
	"Missing",
	"Requires Service",
	"Description",
	"Model#",
}

// isColumnHeader matches the device table's column header rows, which carry
// no digits.
func isColumnHeader(line string) bool {
	if strings.ContainsAny(line, "0123456789") {
		return false
	}
	for _, w := range columnHeaderWords {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}
