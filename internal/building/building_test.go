package building

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/report"
)

func fixedMerger() Merger {
	n := 0
	return Merger{
		Now: func() time.Time { return time.Date(2025, 6, 3, 22, 15, 4, 123e6, time.FixedZone("MDT", -6*3600)) },
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s_%d", prefix, n)
		},
	}
}

func sampleReport() report.Report {
	r := report.New("Champion", "Champion.txt")
	r.FireAlarmDevices = append(r.FireAlarmDevices, report.Device{
		Location: "Library Closet (5)", Type: "HT", TypeName: "Heat Detector (Fixed Temp)", Zone: "2", Status: report.StatusPass,
	})
	r.EmergencyLights = append(r.EmergencyLights, report.Light{
		Device: "EM-3", Circuit: "B-11", Location: "Gym Over Basketball Hoop", Status: report.StatusPass,
	})
	r.Notes = append(r.Notes, "Replace battery in EM-3")
	r.PanelInfo = report.PanelInfo{Manufacturer: "Mircom", Model: "FX-2000", Location: "Basement"}
	r.TestInfo = report.TestInfo{CustomerID: "5034876"}
	return *r
}

func existingRecord() Record {
	return NewRecord("projects/p/databases/(default)/documents/apps/welling-fm/buildings/abc123", map[string]any{
		"name": "Champion",
		"year": "2025",
		"buildingDetails": []any{
			map[string]any{"id": "1", "label": "Address", "value": "1 Main St"},
			map[string]any{"id": "2", "label": "Customer ID", "value": "old"},
			map[string]any{"id": "3", "label": "Customer ID", "value": "older"},
		},
		"sections": []any{
			map[string]any{"id": "fireAlarmDevices", "name": "Fire Alarm Devices", "icon": "🔥"},
		},
		"data": map[string]any{
			"fireAlarmDevices": []any{map[string]any{"id": "stale"}},
			"sprinklers":       []any{map[string]any{"id": "keep"}},
		},
	})
}

func TestRecordAccessors(t *testing.T) {
	t.Parallel()

	rec := existingRecord()
	assert.Equal(t, "abc123", rec.ID)
	assert.Equal(t, "Champion", rec.Name())
	assert.Equal(t, "2025", rec.Year())

	rec.Fields["year"] = int64(2025)
	assert.Empty(t, rec.Year(), "non-string year does not match")
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := existingRecord()
	c := orig.Clone()
	c.Fields["data"].(map[string]any)["sprinklers"] = nil
	c.Fields["buildingDetails"].([]any)[0].(map[string]any)["value"] = "changed"

	assert.NotNil(t, orig.Fields["data"].(map[string]any)["sprinklers"])
	assert.Equal(t, "1 Main St", orig.Fields["buildingDetails"].([]any)[0].(map[string]any)["value"])
}

func TestApplyMergesReport(t *testing.T) {
	t.Parallel()

	rec := existingRecord()
	ch := fixedMerger().Apply(&rec, sampleReport())

	assert.Equal(t, Changes{
		DetailsUpdated:  2,
		DetailsAdded:    2,
		Devices:         1,
		Lights:          1,
		Notes:           1,
		SectionAdded:    true,
		DevicesReplaced: true,
		LightsReplaced:  true,
		NotesReplaced:   true,
	}, ch)

	details := rec.Fields[FieldBuildingDetails].([]any)
	require.Len(t, details, 5)
	assert.Equal(t, "5034876", details[1].(map[string]any)["value"])
	assert.Equal(t, "5034876", details[2].(map[string]any)["value"], "every same-label entry is updated")
	assert.Equal(t, map[string]any{"id": "detail_1", "label": LabelFireAlarmPanel, "value": "Mircom - FX-2000"}, details[3])
	assert.Equal(t, map[string]any{"id": "detail_2", "label": LabelPanelLocation, "value": "Basement"}, details[4])

	data := rec.Fields[FieldData].(map[string]any)
	assert.Equal(t, []any{map[string]any{
		"id":       "fa_3",
		"name":     "Library Closet (5) - Heat Detector (Fixed Temp)",
		"location": "Library Closet (5)",
		"type":     "Heat Detector (Fixed Temp)",
		"zone":     "2",
		"status":   "Pass",
		"date":     "2025-06-04",
		"notes":    "",
	}}, data[FieldFireAlarmDevices])
	assert.Equal(t, []any{map[string]any{
		"id":       "em_4",
		"name":     "EM-3 - Gym Over Basketball Hoop",
		"device":   "EM-3",
		"circuit":  "B-11",
		"location": "Gym Over Basketball Hoop",
		"status":   "Pass",
		"date":     "2025-06-04",
		"notes":    "",
	}}, data[FieldEmergencyLights])
	assert.Equal(t, []any{map[string]any{
		"id":      "note_5",
		"name":    "Note",
		"content": "Replace battery in EM-3",
		"date":    "2025-06-04",
	}}, data[FieldAdditionalNotes])
	assert.NotNil(t, data["sprinklers"], "unrelated data is kept")

	sections := rec.Fields[FieldSections].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, map[string]any{"id": "additionalNotes", "name": "Additional Notes", "icon": "📝"}, sections[1])

	assert.Equal(t, "2025-06-04T04:15:04.123Z", rec.Fields[FieldLastModified])
}

func TestApplyEmptyReportOnlyTouchesTimestamp(t *testing.T) {
	t.Parallel()

	rec := existingRecord()
	before := rec.Clone()
	ch := fixedMerger().Apply(&rec, *report.New("Champion", "Champion.txt"))

	assert.Equal(t, Changes{}, ch)
	delete(rec.Fields, FieldLastModified)
	assert.Equal(t, before.Fields, rec.Fields)
}

func TestApplyCreatesMissingContainers(t *testing.T) {
	t.Parallel()

	rec := NewRecord("apps/welling-fm/buildings/x", nil)
	ch := Merger{}.Apply(&rec, sampleReport())

	assert.Equal(t, 3, ch.DetailsAdded)
	assert.True(t, ch.SectionAdded)
	require.Len(t, rec.Fields[FieldSections], 1)

	devices := rec.Fields[FieldData].(map[string]any)[FieldFireAlarmDevices].([]any)
	id := devices[0].(map[string]any)["id"].(string)
	assert.True(t, strings.HasPrefix(id, "fa_"))
	assert.Len(t, id, len("fa_")+36)
}

func TestApplyTwiceKeepsNonGeneratedFields(t *testing.T) {
	t.Parallel()

	rec := existingRecord()
	m := Merger{}
	m.Apply(&rec, sampleReport())
	first := rec.Clone()
	ch := m.Apply(&rec, sampleReport())

	assert.False(t, ch.SectionAdded)
	assert.Zero(t, ch.DetailsAdded)
	assert.Equal(t, first.Fields[FieldBuildingDetails], rec.Fields[FieldBuildingDetails])
	assert.Equal(t, first.Fields[FieldSections], rec.Fields[FieldSections])

	stripIDs := func(v any) []any {
		var out []any
		for _, e := range v.([]any) {
			c := cloneMap(e.(map[string]any))
			delete(c, "id")
			out = append(out, c)
		}
		return out
	}
	for _, key := range []string{FieldFireAlarmDevices, FieldEmergencyLights, FieldAdditionalNotes} {
		a := first.Fields[FieldData].(map[string]any)[key]
		b := rec.Fields[FieldData].(map[string]any)[key]
		assert.Equal(t, stripIDs(a), stripIDs(b), key)
	}
}
