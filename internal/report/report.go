// Package report defines the records extracted from one inspection report and
// the JSON artifact that carries them between runs.
package report

// StatusPass is the only status the parser assigns; the reports list devices
// that passed inspection.
const StatusPass = "Pass"

// Device is one fire alarm device line
type Device struct {
	Location string `json:"location"`
	Type     string `json:"type"`     // legend code, e.g. "HT"
	TypeName string `json:"typeName"` // legend name, e.g. "Heat Detector (Fixed Temp)"
	Zone     string `json:"zone"`
	Status   string `json:"status"`
}

// Light is one emergency or exit light line
type Light struct {
	Device   string `json:"device"`
	Circuit  string `json:"circuit"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// PanelInfo describes the fire alarm panel. All fields are optional.
type PanelInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	ACPower      string `json:"acPower,omitempty"`
	Location     string `json:"location,omitempty"`
	KeyLocation  string `json:"keyLocation,omitempty"`
}

// TestInfo carries the report header fields.
type TestInfo struct {
	CustomerID string `json:"customerId,omitempty"`
}

// Report is everything extracted from one file
type Report struct {
	BuildingName     string    `json:"buildingName"`
	FileName         string    `json:"fileName"`
	FireAlarmDevices []Device  `json:"fireAlarmDevices"`
	EmergencyLights  []Light   `json:"emergencyLights"`
	Notes            []string  `json:"notes"`
	PanelInfo        PanelInfo `json:"panelInfo"`
	TestInfo         TestInfo  `json:"testInfo"`
}

// New returns an empty report whose lists serialize as [] rather than null.
func New(buildingName, fileName string) *Report {
	return &Report{
		BuildingName:     buildingName,
		FileName:         fileName,
		FireAlarmDevices: []Device{},
		EmergencyLights:  []Light{},
		Notes:            []string{},
	}
}

// Summary counts what a report holds.
type Summary struct {
	Devices int
	Lights  int
	Notes   int
}

func (r *Report) Summary() Summary {
	return Summary{
		Devices: len(r.FireAlarmDevices),
		Lights:  len(r.EmergencyLights),
		Notes:   len(r.Notes),
	}
}

// normalize replaces nil lists with empty ones
func (r *Report) normalize() {
	if r.FireAlarmDevices == nil {
		r.FireAlarmDevices = []Device{}
	}
	if r.EmergencyLights == nil {
		r.EmergencyLights = []Light{}
	}
	if r.Notes == nil {
		r.Notes = []string{}
	}
}

// Dedupe keeps one report per building. A later report replaces an earlier
// one but the building keeps its first position. Returned reports have
// non-nil lists.
func Dedupe(reports []Report) []Report {
	index := make(map[string]int, len(reports))
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		r.normalize()
		if pos, ok := index[r.BuildingName]; ok {
			out[pos] = r
			continue
		}
		index[r.BuildingName] = len(out)
		out = append(out, r)
	}
	return out
}
