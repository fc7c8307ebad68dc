package firestore

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/errors"
)

func TestFieldsSurviveWireRoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 4, 4, 15, 4, 123000000, time.UTC)
	fields := map[string]any{
		"name":      "Champion",
		"year":      "2025",
		"floors":    int64(3),
		"rating":    4.5,
		"active":    true,
		"retired":   nil,
		"inspected": ts,
		"blob":      []byte{0x01, 0x02},
		"owner":     Reference("projects/p/databases/(default)/documents/owners/o1"),
		"where":     GeoPoint{Latitude: 49.2, Longitude: -113.3},
		"empty":     []any{},
		"sections": []any{
			map[string]any{
				"name": "Notes",
				"items": []any{
					map[string]any{"id": "note_1", "value": "Panel OK"},
				},
			},
		},
	}

	encoded, err := EncodeFields(fields)
	require.NoError(t, err)

	raw, err := json.Marshal(Document{Fields: encoded})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	decoded, err := DecodeFields(doc.Fields)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestEncodeWireShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "x", `{"stringValue":"x"}`},
		{"int", 7, `{"integerValue":"7"}`},
		{"double", 1.5, `{"doubleValue":1.5}`},
		{"nan", math.NaN(), `{"doubleValue":"NaN"}`},
		{"null", nil, `{"nullValue":null}`},
		{"empty array", []any{}, `{"arrayValue":{}}`},
		{"strings", []string{"a"}, `{"arrayValue":{"values":[{"stringValue":"a"}]}}`},
		{"map", map[string]any{"k": false}, `{"mapValue":{"fields":{"k":{"booleanValue":false}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := Encode(tt.in)
			require.NoError(t, err)
			raw, err := json.Marshal(v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEncodeRejectsUnsupportedTypes(t *testing.T) {
	t.Parallel()

	_, err := EncodeFields(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestDecodeKeepsUnknownKinds(t *testing.T) {
	t.Parallel()

	v := Value{"vectorValue": map[string]any{"values": []any{1.0}}}
	d, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, RawValue(v), d)

	back, err := Encode(d)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Value
	}{
		{"two keys", Value{"stringValue": "a", "booleanValue": true}},
		{"empty", Value{}},
		{"bad integer", Value{"integerValue": "seven"}},
		{"bad timestamp", Value{"timestampValue": "yesterday"}},
		{"wrong string type", Value{"stringValue": 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.in)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
		})
	}
}
