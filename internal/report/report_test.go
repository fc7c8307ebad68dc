package report

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/errors"
)

func sampleReport() Report {
	r := New("Champion", "Champion 2025.txt")
	r.FireAlarmDevices = append(r.FireAlarmDevices, Device{
		Location: "Library Closet (5)",
		Type:     "HT",
		TypeName: "Heat Detector (Fixed Temp)",
		Zone:     "2",
		Status:   StatusPass,
	})
	r.EmergencyLights = append(r.EmergencyLights, Light{
		Device:   "EM-3",
		Circuit:  "B-11",
		Location: "Gym Over Basketball Hoop",
		Status:   StatusPass,
	})
	r.Notes = append(r.Notes, "Replace battery in EM-3 before next visit")
	r.PanelInfo = PanelInfo{Manufacturer: "Mircom", Model: "FX-2000"}
	r.TestInfo = TestInfo{CustomerID: "5034876"}
	return *r
}

func TestArtifactRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	empty := *New("Leavitt", "Leavitt.txt")
	want := []Report{sampleReport(), empty}

	require.NoError(t, WriteArtifact(fs, "out/parsed.json", want))

	got, err := ReadArtifact(fs, "out/parsed.json")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	files, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, files, 1, "temp file must not be left behind")
}

func TestArtifactEmptyListsAreArrays(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, WriteArtifact(fs, "a.json", []Report{{BuildingName: "Leavitt", FileName: "Leavitt.txt"}}))

	data, err := afero.ReadFile(fs, "a.json")
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"fireAlarmDevices": []`)
	assert.Contains(t, text, `"emergencyLights": []`)
	assert.Contains(t, text, `"notes": []`)
	assert.NotContains(t, text, "manufacturer", "empty panel fields are omitted")
	assert.NotContains(t, text, "null")
}

func TestWriteArtifactNilReports(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, WriteArtifact(fs, "a.json", nil))

	data, err := afero.ReadFile(fs, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestReadArtifactErrors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	_, err := ReadArtifact(fs, "missing.json")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte("{"), 0o644))
	_, err = ReadArtifact(fs, "bad.json")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestDedupeLastWinsKeepsOrder(t *testing.T) {
	t.Parallel()

	first := *New("Champion", "Champion old.txt")
	other := *New("Leavitt", "Leavitt.txt")
	second := *New("Champion", "Champion new.txt")

	got := Dedupe([]Report{first, other, second})
	require.Len(t, got, 2)
	assert.Equal(t, "Champion new.txt", got[0].FileName)
	assert.Equal(t, "Leavitt.txt", got[1].FileName)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	assert.Equal(t, Summary{Devices: 1, Lights: 1, Notes: 1}, r.Summary())
}
