package ingest

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/parser"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Customer ID: 42\r\nGym"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  []byte
		ext  string
		want string
	}{
		{"plain", []byte("Gym  S  1"), ".txt", "Gym  S  1"},
		{"crlf and cr", []byte("a\r\nb\rc\n"), ".txt", "a\nb\nc\n"},
		{"utf8 bom", []byte("\xef\xbb\xbfLobby"), ".txt", "Lobby"},
		{"invalid bytes dropped", []byte("Gym\xff S"), ".txt", "Gym S"},
		{"utf16 with bom", utf16, ".txt", "Customer ID: 42\nGym"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decode(tt.raw, tt.ext))
		})
	}
}

func TestDecodeHTML(t *testing.T) {
	t.Parallel()

	got := Decode([]byte("<html><body>Customer ID: 77<br>Fire &amp; Safety</body></html>"), ".HTML")
	assert.Contains(t, got, "Customer ID: 77\n")
	assert.Contains(t, got, "Fire & Safety")
	assert.NotContains(t, got, "<br>")
	assert.NotContains(t, got, "\r")
}

func newScanner(fs afero.Fs) *Scanner {
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelDebug)
	p := parser.New(nil, nil, parser.Options{NoteContinuationLines: 2}, log)
	return NewScanner(fs, p, nil, log, nil)
}

func TestScan(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "reports/Magrath SC 2025.txt",
		[]byte("Customer ID: 9\r\nANNUAL TEST AND INSPECTION RECORD\r\nGym  S  1\r\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "reports/Champion.txt", []byte("Customer ID: 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "reports/Lethbridge.txt", []byte("nothing"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "reports/Champion.pdf", []byte("%PDF"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "reports/old/Leavitt.txt", []byte(""), 0o644))

	res, err := newScanner(fs).Scan(context.Background(), "reports")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, "Champion", res.Reports[0].BuildingName, "files are read in name order")
	assert.Equal(t, "Magrath Stake Center", res.Reports[1].BuildingName)
	assert.Equal(t, "9", res.Reports[1].TestInfo.CustomerID)
	require.Len(t, res.Reports[1].FireAlarmDevices, 1)
	assert.Equal(t, "Gym", res.Reports[1].FireAlarmDevices[0].Location)

	assert.Equal(t, []Skipped{{File: "Lethbridge.txt", Reason: "unmatched_building"}}, res.Skipped)
}

func TestScanMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := newScanner(afero.NewMemMapFs()).Scan(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestScanCancelled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "r/Champion.txt", []byte(""), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(fs).Scan(ctx, "r")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}
