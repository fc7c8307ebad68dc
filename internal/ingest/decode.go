package ingest

import (
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Decode turns raw file bytes into report text. A UTF-8 or UTF-16 byte order
// mark selects the decoding, otherwise UTF-8 is assumed. Invalid sequences are
// dropped rather than rejected. HTML exports are reduced to their text.
func Decode(raw []byte, ext string) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)

	var text string
	if err != nil {
		text = strings.ToValidUTF8(string(raw), "")
	} else {
		text = strings.ReplaceAll(string(out), "\uFFFD", "")
	}

	if isHTML(ext) {
		text = html2text.HTML2Text(text)
	}
	return newlineReplacer.Replace(text)
}

func isHTML(ext string) bool {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return true
	}
	return false
}
