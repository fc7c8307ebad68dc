package seed

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/report"
)

func TestDefaultDataset(t *testing.T) {
	t.Parallel()

	reports, err := Default(nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "Cardston Temple", r.BuildingName)
	assert.Equal(t, "Edwards", r.PanelInfo.Manufacturer)
	assert.Equal(t, "2280", r.PanelInfo.Model)
	assert.Equal(t, "5034876", r.TestInfo.CustomerID)
	assert.Len(t, r.FireAlarmDevices, 61)
	assert.Len(t, r.EmergencyLights, 19)
	assert.Empty(t, r.Notes)

	assert.Equal(t, report.Device{
		Location: "SE Bishop Exit (14)",
		Type:     "H",
		TypeName: "Manual Pull Station",
		Zone:     "2",
		Status:   report.StatusPass,
	}, r.FireAlarmDevices[0])
	assert.Equal(t, "RHT", r.FireAlarmDevices[24].Type)
	assert.Equal(t, report.Light{
		Device:   "EM-19",
		Circuit:  "C-13",
		Location: "Attic West Side",
		Status:   report.StatusPass,
	}, r.EmergencyLights[18])
}

func TestLoadAcceptsCodesAndDefaultsFileName(t *testing.T) {
	t.Parallel()

	reports, err := Load([]byte(`
buildings:
  - name: Champion
    devices:
      - {location: Lobby, type: S, zone: "1"}
    notes: ["Notes: batteries replaced in panel"]
`), nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, "Champion", reports[0].FileName)
	assert.Equal(t, "Smoke Detector", reports[0].FireAlarmDevices[0].TypeName)
	assert.Equal(t, []string{"Notes: batteries replaced in panel"}, reports[0].Notes)
	assert.Empty(t, reports[0].EmergencyLights)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		category errors.ErrorCategory
	}{
		{"unknown key", "buildings:\n  - name: A\n    colour: red\n", errors.CategoryFileParsing},
		{"not yaml", "buildings: [", errors.CategoryFileParsing},
		{"missing name", "buildings:\n  - file: x.txt\n", errors.CategoryValidation},
		{"unknown type", "buildings:\n  - name: A\n    devices:\n      - {location: L, type: Sprinkler Head}\n", errors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tt.data), nil)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category), "got %s", errors.CategoryOf(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seed.yaml", []byte("buildings:\n  - name: Champion\n"), 0o644))

	reports, err := LoadFile(fs, "/seed.yaml", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	_, err = LoadFile(fs, "/missing.yaml", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
