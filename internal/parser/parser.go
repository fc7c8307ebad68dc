// Package parser extracts devices, emergency lights, panel details and notes
// from plain-text fire inspection reports.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/welling-fm/fireinspect/internal/catalog"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/report"
)

// ErrUnmatchedBuilding is returned when no building alias occurs in the file name
var ErrUnmatchedBuilding = errors.NewStd("could not match building name")

// DefaultNoteContinuationLines is how many lines after a note line are joined to it
const DefaultNoteContinuationLines = 2

var (
	panelPattern         = regexp.MustCompile(`(?i)Fire Alarm panel Manufacturer:\s*([^\n]+?)Model #:\s*([^\n]+)`)
	acPowerPattern       = regexp.MustCompile(`(?im)AC Pwr[^:]*:\s*([^\n]+?)(?:Panel Location|Located|$)`)
	panelLocationPattern = regexp.MustCompile(`(?i)Panel (?:Located|Location)[^:]*:\s*([^\n]+)`)
	keyLocationPattern   = regexp.MustCompile(`(?i)Key[^:]*:\s*([^\n]+)`)
	customerIDPattern    = regexp.MustCompile(`Customer ID:\s*(\d+)`)
)

// Options tunes the line heuristics
type Options struct {
	StandaloneCircuits    bool
	NoteContinuationLines int
}

// Parser turns report text into a report.Report. It holds no per-file state
// and can be reused.
type Parser struct {
	devices   *catalog.DeviceTable
	buildings *catalog.BuildingTable
	opts      Options
	log       logger.Logger
}

// New creates a parser. Nil tables select the built-in ones and a nil logger
// selects the global logger.
func New(devices *catalog.DeviceTable, buildings *catalog.BuildingTable, opts Options, log logger.Logger) *Parser {
	if devices == nil {
		devices = catalog.DefaultDeviceTable()
	}
	if buildings == nil {
		buildings = catalog.DefaultBuildingTable()
	}
	if opts.NoteContinuationLines < 0 {
		opts.NoteContinuationLines = 0
	}
	if log == nil {
		log = logger.Global().Module("parser")
	}
	return &Parser{devices: devices, buildings: buildings, opts: opts, log: log}
}

// Parse extracts a report from content. The building is resolved from
// fileName; when that fails the error wraps ErrUnmatchedBuilding.
func (p *Parser) Parse(fileName, content string) (*report.Report, error) {
	building, ok := p.buildings.Resolve(fileName)
	if !ok {
		return nil, errors.New(fmt.Errorf("%w: %s", ErrUnmatchedBuilding, fileName)).
			Component("parser").
			Category(errors.CategoryNotFound).
			Context("file", fileName).
			Build()
	}

	r := report.New(building, fileName)
	r.PanelInfo = extractPanel(content)
	if m := customerIDPattern.FindStringSubmatch(content); m != nil {
		r.TestInfo.CustomerID = m[1]
	}

	lines := strings.Split(content, "\n")
	state := sectionNone
	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if next, ok := sectionHeader(line); ok {
			if next != state {
				p.log.Trace("section changed",
					logger.String("file", fileName),
					logger.Int("line", i+1),
					logger.String("section", next.String()))
			}
			state = next
			continue
		}

		switch state {
		case sectionDevices:
			if isColumnHeader(line) {
				continue
			}
			if d, ok := p.parseDevice(line); ok {
				r.FireAlarmDevices = append(r.FireAlarmDevices, d)
			}
		case sectionLights:
			if l, ok := p.parseLight(line); ok {
				r.EmergencyLights = append(r.EmergencyLights, l)
			}
		}

		if note, ok := p.noteAt(lines, i); ok {
			r.Notes = append(r.Notes, note)
		}
	}

	s := r.Summary()
	p.log.Debug("report parsed",
		logger.String("file", fileName),
		logger.String("building", building),
		logger.Int("devices", s.Devices),
		logger.Int("lights", s.Lights),
		logger.Int("notes", s.Notes))
	return r, nil
}

func extractPanel(content string) report.PanelInfo {
	var info report.PanelInfo
	if m := panelPattern.FindStringSubmatch(content); m != nil {
		info.Manufacturer = strings.TrimSpace(m[1])
		info.Model = strings.TrimSpace(m[2])
	}
	if m := acPowerPattern.FindStringSubmatch(content); m != nil {
		info.ACPower = strings.TrimSpace(m[1])
	}
	if m := panelLocationPattern.FindStringSubmatch(content); m != nil {
		info.Location = strings.TrimSpace(m[1])
	}
	if m := keyLocationPattern.FindStringSubmatch(content); m != nil {
		info.KeyLocation = strings.TrimSpace(m[1])
	}
	return info
}
