// Package page renders the self-contained uploader page that applies parsed
// reports from a browser signed in to Firebase.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/report"
)

// DefaultSDKVersion is the Firebase web SDK loaded by the page
const DefaultSDKVersion = "9.22.0"

//go:embed uploader.html.tmpl
var uploaderTemplate string

var tmpl = template.Must(template.New("uploader").Parse(uploaderTemplate))

// Config is what the page needs besides the reports.
type Config struct {
	Firebase   conf.FirebaseSettings
	AppID      string
	Year       string
	SDKVersion string
}

type pageData struct {
	Firebase   conf.FirebaseSettings
	AppID      string
	Year       string
	SDKVersion string
	Count      int
	Buildings  map[string]report.Report
}

// Generate writes the page for reports. Reports for the same building are
// collapsed to the last one.
func Generate(w io.Writer, reports []report.Report, cfg Config) error {
	if cfg.SDKVersion == "" {
		cfg.SDKVersion = DefaultSDKVersion
	}
	deduped := report.Dedupe(reports)
	buildings := make(map[string]report.Report, len(deduped))
	for _, r := range deduped {
		buildings[r.BuildingName] = r
	}

	data := pageData{
		Firebase:   cfg.Firebase,
		AppID:      cfg.AppID,
		Year:       cfg.Year,
		SDKVersion: cfg.SDKVersion,
		Count:      len(buildings),
		Buildings:  buildings,
	}
	if err := tmpl.Execute(w, data); err != nil {
		return errors.New(fmt.Errorf("render uploader page: %w", err)).
			Component("page").
			Category(errors.CategoryGeneric).
			Build()
	}
	return nil
}

// WriteFile renders the page to path, replacing any previous file atomically.
func WriteFile(fs afero.Fs, path string, reports []report.Report, cfg Config) error {
	var buf bytes.Buffer
	if err := Generate(&buf, reports, cfg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(fmt.Errorf("create page directory: %w", err), dir, 0)
	}
	tmp, err := afero.TempFile(fs, dir, ".page-*.tmp")
	if err != nil {
		return errors.FileError(fmt.Errorf("create temp page: %w", err), path, 0)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("write page: %w", err), path, int64(buf.Len()))
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("close page: %w", err), path, int64(buf.Len()))
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("replace page: %w", err), path, int64(buf.Len()))
	}
	return nil
}
