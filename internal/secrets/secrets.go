// Package secrets resolves credentials written inline, as ${VAR} references
// or in files such as Docker and Kubernetes secrets. Secret values are never
// logged.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
)

// maxFileSize limits secret file reads; secrets are tokens, not documents
const maxFileSize = 64 * 1024

// reference matches ${VAR} and ${VAR:-default}. A bare $VAR is left alone
// because service URLs and keys may contain a dollar sign.
var reference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// Expand replaces ${VAR} references with environment values. ${VAR:-default}
// falls back to default when VAR is unset or empty; a plain reference to an
// unset variable is an error naming the variable.
func Expand(s string) (string, error) {
	var missing []string
	out := reference.ReplaceAllStringFunc(s, func(ref string) string {
		m := reference.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		if m[2] != "" {
			return m[3]
		}
		missing = append(missing, m[1])
		return ""
	})
	if len(missing) > 0 {
		return "", errors.Newf("missing environment variable(s): %s", strings.Join(missing, ", ")).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return out, nil
}

// ReadFile reads a secret file. Trailing newlines are trimmed and an empty
// file is an error. Files readable by group or others are accepted with a
// warning.
func ReadFile(path string) (string, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return "", errors.FileError(fmt.Errorf("secret file: %w", err), clean, 0)
	}
	if !info.Mode().IsRegular() {
		return "", secretFileError("secret path is not a regular file", clean)
	}
	if info.Size() > maxFileSize {
		return "", secretFileError(fmt.Sprintf("secret file larger than %d bytes", maxFileSize), clean)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module("secrets").Warn("secret file is readable by group or others",
			logger.String("path", clean),
			logger.String("mode", fmt.Sprintf("%04o", perm)))
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", errors.FileError(fmt.Errorf("read secret file: %w", err), clean, info.Size())
	}
	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", secretFileError("secret file is empty", clean)
	}
	return secret, nil
}

func secretFileError(msg, path string) error {
	return errors.Newf("%s", msg).
		Component("secrets").
		Category(errors.CategoryConfiguration).
		Context("file_path", path).
		Build()
}

// Resolve picks the secret from filePath when set, otherwise from value with
// ${VAR} references expanded. Both empty resolves to "".
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	if value == "" {
		return "", nil
	}
	return Expand(value)
}
