// Package building holds the store-neutral building document and the merge
// that folds a parsed report into it.
package building

import (
	"path"
	"time"
)

// Record is one building document. Path is the full resource name in the
// store and ID its last segment.
type Record struct {
	ID     string
	Path   string
	Fields map[string]any
}

// NewRecord creates a record for the document at docPath.
func NewRecord(docPath string, fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{ID: path.Base(docPath), Path: docPath, Fields: fields}
}

// Name returns the "name" field, or "" when absent or not a string.
func (r Record) Name() string {
	return r.stringField("name")
}

// Year returns the "year" field, or "" when absent or not a string.
func (r Record) Year() string {
	return r.stringField("year")
}

func (r Record) stringField(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Clone deep-copies the record so a merge never aliases the original.
func (r Record) Clone() Record {
	return Record{ID: r.ID, Path: r.Path, Fields: cloneMap(r.Fields)}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneMap(t[i])
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	case time.Time:
		return t
	default:
		return v
	}
}
