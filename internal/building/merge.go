package building

import (
	"time"

	"github.com/google/uuid"

	"github.com/welling-fm/fireinspect/internal/report"
)

// Field and label names of the building document
const (
	FieldBuildingDetails = "buildingDetails"
	FieldData            = "data"
	FieldSections        = "sections"
	FieldLastModified    = "lastModified"

	FieldFireAlarmDevices = "fireAlarmDevices"
	FieldEmergencyLights  = "emergencyLights"
	FieldAdditionalNotes  = "additionalNotes"

	LabelFireAlarmPanel = "Fire Alarm Panel"
	LabelPanelLocation  = "Panel Location"
	LabelCustomerID     = "Customer ID"

	NotesSectionName = "Additional Notes"
	NotesSectionIcon = "📝"
	NoteName         = "Note"

	// LastModifiedLayout is ISO-8601 in UTC with milliseconds
	LastModifiedLayout = "2006-01-02T15:04:05.000Z07:00"
	dateLayout         = "2006-01-02"
)

// Id prefixes for generated entries
const (
	PrefixDevice = "fa"
	PrefixLight  = "em"
	PrefixNote   = "note"
	PrefixDetail = "detail"
)

// Changes describes what a merge touched
type Changes struct {
	DetailsUpdated  int
	DetailsAdded    int
	Devices         int
	Lights          int
	Notes           int
	SectionAdded    bool
	DevicesReplaced bool
	LightsReplaced  bool
	NotesReplaced   bool
}

// Merger folds reports into building records. Zero values select the wall
// clock and random UUIDs.
type Merger struct {
	Now   func() time.Time
	NewID func(prefix string) string
}

func (m Merger) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func (m Merger) newID(prefix string) string {
	if m.NewID != nil {
		return m.NewID(prefix)
	}
	return prefix + "_" + uuid.NewString()
}

// Apply merges r into rec in place. Detail entries are updated by label,
// device, light and note lists are replaced when the report has entries, and
// lastModified is always set.
func (m Merger) Apply(rec *Record, r report.Report) Changes {
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	now := m.now()
	date := now.Format(dateLayout)
	var ch Changes

	if r.PanelInfo.Manufacturer != "" {
		m.setDetail(rec, LabelFireAlarmPanel, r.PanelInfo.Manufacturer+" - "+r.PanelInfo.Model, &ch)
	}
	if r.PanelInfo.Location != "" {
		m.setDetail(rec, LabelPanelLocation, r.PanelInfo.Location, &ch)
	}
	if r.TestInfo.CustomerID != "" {
		m.setDetail(rec, LabelCustomerID, r.TestInfo.CustomerID, &ch)
	}

	if len(r.FireAlarmDevices) > 0 {
		entries := make([]any, 0, len(r.FireAlarmDevices))
		for _, d := range r.FireAlarmDevices {
			entries = append(entries, map[string]any{
				"id":       m.newID(PrefixDevice),
				"name":     d.Location + " - " + d.TypeName,
				"location": d.Location,
				"type":     d.TypeName,
				"zone":     d.Zone,
				"status":   d.Status,
				"date":     date,
				"notes":    "",
			})
		}
		data(rec)[FieldFireAlarmDevices] = entries
		ch.Devices = len(entries)
		ch.DevicesReplaced = true
	}

	if len(r.EmergencyLights) > 0 {
		entries := make([]any, 0, len(r.EmergencyLights))
		for _, l := range r.EmergencyLights {
			entries = append(entries, map[string]any{
				"id":       m.newID(PrefixLight),
				"name":     l.Device + " - " + l.Location,
				"device":   l.Device,
				"circuit":  l.Circuit,
				"location": l.Location,
				"status":   l.Status,
				"date":     date,
				"notes":    "",
			})
		}
		data(rec)[FieldEmergencyLights] = entries
		ch.Lights = len(entries)
		ch.LightsReplaced = true
	}

	if len(r.Notes) > 0 {
		entries := make([]any, 0, len(r.Notes))
		for _, n := range r.Notes {
			entries = append(entries, map[string]any{
				"id":      m.newID(PrefixNote),
				"name":    NoteName,
				"content": n,
				"date":    date,
			})
		}
		data(rec)[FieldAdditionalNotes] = entries
		ch.Notes = len(entries)
		ch.NotesReplaced = true
		ch.SectionAdded = ensureNotesSection(rec)
	}

	rec.Fields[FieldLastModified] = now.Format(LastModifiedLayout)
	return ch
}

// setDetail gives every detail entry labelled label the new value. When there
// is none a new entry is appended.
func (m Merger) setDetail(rec *Record, label, value string, ch *Changes) {
	details, _ := rec.Fields[FieldBuildingDetails].([]any)
	found := false
	for _, d := range details {
		entry, ok := d.(map[string]any)
		if !ok || entry["label"] != label {
			continue
		}
		entry["value"] = value
		found = true
		ch.DetailsUpdated++
	}
	if !found {
		details = append(details, map[string]any{
			"id":    m.newID(PrefixDetail),
			"label": label,
			"value": value,
		})
		ch.DetailsAdded++
	}
	rec.Fields[FieldBuildingDetails] = details
}

// data returns the record's data map, creating it when missing
func data(rec *Record) map[string]any {
	d, ok := rec.Fields[FieldData].(map[string]any)
	if !ok {
		d = map[string]any{}
		rec.Fields[FieldData] = d
	}
	return d
}

// ensureNotesSection adds the notes section when no section has its id
func ensureNotesSection(rec *Record) bool {
	sections, _ := rec.Fields[FieldSections].([]any)
	for _, s := range sections {
		if entry, ok := s.(map[string]any); ok && entry["id"] == FieldAdditionalNotes {
			return false
		}
	}
	rec.Fields[FieldSections] = append(sections, map[string]any{
		"id":   FieldAdditionalNotes,
		"name": NotesSectionName,
		"icon": NotesSectionIcon,
	})
	return true
}
