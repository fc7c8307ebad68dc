package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNoteRunes         = 10
	maxNoteRunes         = 500
	maxContinuationRunes = 100
)

var (
	noteKeywords     = []string{"deficienc", "replace", "broken", "fix", "repair", "not working"}
	noteLabelPattern = regexp.MustCompile(`(?i)^(note[s]?:?\s*|deficiencie[s]?:?\s*)`)
)

// isNoteLine reports whether a trimmed line starts a note
func isNoteLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range noteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return strings.Contains(lower, "note") && strings.Contains(lower, ":")
}

// isContinuation reports whether a following line belongs to the note
func isContinuation(line string) bool {
	return line != "" &&
		!strings.Contains(line, "---") &&
		!strings.Contains(line, "ANNUAL") &&
		utf8.RuneCountInString(line) < maxContinuationRunes
}

// noteAt builds the note starting at lines[i], joining up to the configured
// number of continuation lines. Lines are trimmed before use.
func (p *Parser) noteAt(lines []string, i int) (string, bool) {
	line := strings.TrimSpace(lines[i])
	if !isNoteLine(line) {
		return "", false
	}

	var b strings.Builder
	b.WriteString(line)
	for j := i + 1; j <= i+p.opts.NoteContinuationLines && j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if !isContinuation(next) {
			break
		}
		b.WriteByte(' ')
		b.WriteString(next)
	}

	note := strings.TrimSpace(noteLabelPattern.ReplaceAllString(b.String(), ""))
	n := utf8.RuneCountInString(note)
	if n <= minNoteRunes || n >= maxNoteRunes {
		return "", false
	}
	return note, true
}
