package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/welling-fm/fireinspect/internal/errors"
)

// WriteArtifact writes reports as one indented JSON array. The file is
// written next to path and renamed into place.
func WriteArtifact(fs afero.Fs, path string, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	for i := range reports {
		reports[i].normalize()
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryFileParsing).
			Context("operation", "marshal-artifact").
			Build()
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(fmt.Errorf("create artifact directory: %w", err), dir, 0)
	}

	tmp, err := afero.TempFile(fs, dir, ".artifact-*.json")
	if err != nil {
		return errors.FileError(fmt.Errorf("create temp artifact: %w", err), path, 0)
	}
	tmpName := tmp.Name()
	defer fs.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.FileError(fmt.Errorf("write artifact: %w", err), path, int64(len(data)))
	}
	if err := tmp.Close(); err != nil {
		return errors.FileError(fmt.Errorf("close artifact: %w", err), path, int64(len(data)))
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return errors.FileError(fmt.Errorf("rename artifact: %w", err), path, int64(len(data)))
	}
	return nil
}

// ReadArtifact reads an artifact written by WriteArtifact.
func ReadArtifact(fs afero.Fs, path string) ([]Report, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("read artifact: %w", err), path, 0)
	}

	var reports []Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, errors.New(fmt.Errorf("decode artifact: %w", err)).
			Component("report").
			Category(errors.CategoryFileParsing).
			FileContext(path, int64(len(data))).
			Build()
	}
	for i := range reports {
		reports[i].normalize()
	}
	return reports, nil
}
