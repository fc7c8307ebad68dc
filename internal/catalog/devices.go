// Package catalog holds the lookup tables the report parser resolves against:
// the device legend printed on inspection reports and the file-name aliases of
// the inspected buildings.
package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DeviceType is one entry of the report legend
type DeviceType struct {
	Code string `mapstructure:"code" yaml:"code" json:"code"`
	Name string `mapstructure:"name" yaml:"name" json:"name"`
}

// DefaultDeviceTypes is the report legend in matching priority order. Longer
// codes come first so that "S" never wins inside "HSP".
var DefaultDeviceTypes = []DeviceType{
	{Code: "H/S", Name: "Horn/Strobe"},
	{Code: "V/B", Name: "Visual/Bell"},
	{Code: "RHT", Name: "Heat Detector (Rate of Rise)"},
	{Code: "HSP", Name: "Horn/Loud Speaker"},
	{Code: "HT", Name: "Heat Detector (Fixed Temp)"},
	{Code: "DS", Name: "Duct Smoke Detector"},
	{Code: "SA", Name: "Smoke Alarm"},
	{Code: "AD", Name: "Ancillary Device"},
	{Code: "FS", Name: "Sprinkler Flow Switch"},
	{Code: "TS", Name: "Sprinkler Tamper Switch"},
	{Code: "ET", Name: "Emergency Telephone"},
	{Code: "SP", Name: "Loud Speaker"},
	{Code: "H", Name: "Manual Pull Station"},
	{Code: "S", Name: "Smoke Detector"},
	{Code: "B", Name: "Bell"},
	{Code: "K", Name: "Horn"},
	{Code: "C", Name: "Chime"},
	{Code: "V", Name: "Visual Alarm Appliance"},
}

// DeviceMatch is the position of a device code inside a line
type DeviceMatch struct {
	DeviceType
	Start int
	End   int
}

// DeviceTable scans lines for device codes in a fixed priority order
type DeviceTable struct {
	types    []DeviceType
	patterns []*regexp.Regexp
	byCode   map[string]string
	byName   map[string]string
}

// NewDeviceTable builds a table from types. Entries are stable-sorted by code
// length, longest first; equal lengths keep the given order.
func NewDeviceTable(types []DeviceType) (*DeviceTable, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("device table needs at least one device type")
	}

	ordered := slices.Clone(types)
	slices.SortStableFunc(ordered, func(a, b DeviceType) int {
		return len(b.Code) - len(a.Code)
	})

	t := &DeviceTable{
		types:    ordered,
		patterns: make([]*regexp.Regexp, 0, len(ordered)),
		byCode:   make(map[string]string, len(ordered)),
		byName:   make(map[string]string, len(ordered)),
	}
	for _, dt := range ordered {
		code := strings.TrimSpace(dt.Code)
		if code == "" || strings.TrimSpace(dt.Name) == "" {
			return nil, fmt.Errorf("device type %q: code and name are required", dt.Code)
		}
		if _, dup := t.byCode[code]; dup {
			return nil, fmt.Errorf("duplicate device code %q", code)
		}
		t.byCode[code] = dt.Name
		if _, seen := t.byName[dt.Name]; !seen {
			t.byName[dt.Name] = code
		}
		t.patterns = append(t.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(code)+`\b`))
	}
	return t, nil
}

// DefaultDeviceTable returns the table for DefaultDeviceTypes
func DefaultDeviceTable() *DeviceTable {
	t, err := NewDeviceTable(DefaultDeviceTypes)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the first code, in priority order, that appears in line as a
// whole word. The position in the line does not matter.
func (t *DeviceTable) Match(line string) (DeviceMatch, bool) {
	for i, re := range t.patterns {
		if loc := re.FindStringIndex(line); loc != nil {
			return DeviceMatch{DeviceType: t.types[i], Start: loc[0], End: loc[1]}, true
		}
	}
	return DeviceMatch{}, false
}

// Name returns the legend name of a code
func (t *DeviceTable) Name(code string) (string, bool) {
	name, ok := t.byCode[code]
	return name, ok
}

// CodeForName returns the first code whose legend name is name
func (t *DeviceTable) CodeForName(name string) (string, bool) {
	code, ok := t.byName[name]
	return code, ok
}

// Types returns the table entries in priority order
func (t *DeviceTable) Types() []DeviceType {
	return slices.Clone(t.types)
}
