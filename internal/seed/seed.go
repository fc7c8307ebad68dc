// Package seed loads hand-entered inspection results and turns them into
// reports the updater can apply.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/welling-fm/fireinspect/internal/catalog"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/report"
)

//go:embed buildings.yaml
var defaultData []byte

// Dataset is the file layout.
type Dataset struct {
	Buildings []Building `yaml:"buildings"`
}

// Building is one building's results. Device types are legend names, or
// legend codes when the name is not known.
type Building struct {
	Name       string   `yaml:"name"`
	File       string   `yaml:"file"`
	Panel      Panel    `yaml:"panel"`
	CustomerID string   `yaml:"customer_id"`
	Devices    []Device `yaml:"devices"`
	Lights     []Light  `yaml:"lights"`
	Notes      []string `yaml:"notes"`
}

type Panel struct {
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Location     string `yaml:"location"`
}

type Device struct {
	Location string `yaml:"location"`
	Type     string `yaml:"type"`
	Zone     string `yaml:"zone"`
}

type Light struct {
	Device   string `yaml:"device"`
	Circuit  string `yaml:"circuit"`
	Location string `yaml:"location"`
}

// Default returns the embedded dataset as reports.
func Default(devices *catalog.DeviceTable) ([]report.Report, error) {
	return Load(defaultData, devices)
}

// LoadFile reads a dataset file of the same shape as the embedded one.
func LoadFile(fs afero.Fs, path string, devices *catalog.DeviceTable) ([]report.Report, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("read seed file: %w", err), path, 0)
	}
	reports, err := Load(data, devices)
	if err != nil {
		return nil, errors.New(err).
			Component("seed").
			Context("file", path).
			Build()
	}
	return reports, nil
}

// Load decodes a dataset. Unknown keys and unknown device types are errors.
func Load(data []byte, devices *catalog.DeviceTable) ([]report.Report, error) {
	if devices == nil {
		devices = catalog.DefaultDeviceTable()
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, errors.New(fmt.Errorf("decode seed data: %w", err)).
			Component("seed").
			Category(errors.CategoryFileParsing).
			Build()
	}

	reports := make([]report.Report, 0, len(ds.Buildings))
	for i, b := range ds.Buildings {
		r, err := b.toReport(devices)
		if err != nil {
			return nil, errors.New(fmt.Errorf("building %d: %w", i+1, err)).
				Component("seed").
				Category(errors.CategoryValidation).
				Build()
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (b Building) toReport(devices *catalog.DeviceTable) (report.Report, error) {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return report.Report{}, fmt.Errorf("name is required")
	}
	file := b.File
	if file == "" {
		file = name
	}

	r := report.New(name, file)
	r.PanelInfo = report.PanelInfo{
		Manufacturer: b.Panel.Manufacturer,
		Model:        b.Panel.Model,
		Location:     b.Panel.Location,
	}
	r.TestInfo.CustomerID = b.CustomerID

	for _, d := range b.Devices {
		code, typeName, err := resolveType(devices, d.Type)
		if err != nil {
			return report.Report{}, fmt.Errorf("%s: device %q: %w", name, d.Location, err)
		}
		r.FireAlarmDevices = append(r.FireAlarmDevices, report.Device{
			Location: d.Location,
			Type:     code,
			TypeName: typeName,
			Zone:     d.Zone,
			Status:   report.StatusPass,
		})
	}
	for _, l := range b.Lights {
		r.EmergencyLights = append(r.EmergencyLights, report.Light{
			Device:   l.Device,
			Circuit:  l.Circuit,
			Location: l.Location,
			Status:   report.StatusPass,
		})
	}
	r.Notes = append(r.Notes, b.Notes...)
	return *r, nil
}

func resolveType(devices *catalog.DeviceTable, typ string) (code, name string, err error) {
	if code, ok := devices.CodeForName(typ); ok {
		return code, typ, nil
	}
	if name, ok := devices.Name(typ); ok {
		return typ, name, nil
	}
	return "", "", fmt.Errorf("unknown device type %q", typ)
}
