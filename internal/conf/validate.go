// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct and reports every
// problem at once.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}
	add := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}

	validateLogging(&settings.Logging, add)
	validateInput(&settings.Input, add)
	validateParser(&settings.Parser, add)
	validateCatalog(&settings.Catalog, add)
	validateFirestore(&settings.Firestore, add)
	validateUpdate(&settings.Update, add)

	if strings.TrimSpace(settings.Datastore.Path) == "" {
		add("datastore.path must not be empty")
	}
	if _, _, err := net.SplitHostPort(settings.Server.Listen); err != nil {
		add("server.listen %q is not host:port: %v", settings.Server.Listen, err)
	}

	if len(ve.Errors) > 0 {
		return errors.New(ve).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("error_count", len(ve.Errors)).
			Build()
	}
	return nil
}

func validLevel(level string) bool {
	switch logger.LogLevel(strings.ToLower(level)) {
	case logger.LogLevelTrace, logger.LogLevelDebug, logger.LogLevelInfo, logger.LogLevelWarn, logger.LogLevelError:
		return true
	}
	return false
}

func validateLogging(cfg *logger.LoggingConfig, add func(string, ...any)) {
	if cfg.DefaultLevel != "" && !validLevel(cfg.DefaultLevel) {
		add("logging.default_level %q is not a log level", cfg.DefaultLevel)
	}
	if cfg.Console != nil && cfg.Console.Level != "" && !validLevel(cfg.Console.Level) {
		add("logging.console.level %q is not a log level", cfg.Console.Level)
	}
	if cfg.FileOutput != nil && cfg.FileOutput.Enabled {
		if cfg.FileOutput.Path == "" {
			add("logging.file_output.path must be set when file output is enabled")
		}
		if cfg.FileOutput.Level != "" && !validLevel(cfg.FileOutput.Level) {
			add("logging.file_output.level %q is not a log level", cfg.FileOutput.Level)
		}
	}
	for module, level := range cfg.ModuleLevels {
		if !validLevel(level) {
			add("logging.module_levels.%s %q is not a log level", module, level)
		}
	}
}

func validateInput(cfg *InputSettings, add func(string, ...any)) {
	if len(cfg.Extensions) == 0 {
		add("input.extensions must list at least one extension")
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			add("input.extensions entry %q must start with a dot", ext)
		}
	}
}

func validateParser(cfg *ParserSettings, add func(string, ...any)) {
	if cfg.NoteContinuationLines < 0 || cfg.NoteContinuationLines > 10 {
		add("parser.note_continuation_lines must be between 0 and 10, got %d", cfg.NoteContinuationLines)
	}
}

func validateCatalog(cfg *CatalogSettings, add func(string, ...any)) {
	if _, err := cfg.DeviceTable(); err != nil {
		add("catalog.device_types: %v", err)
	}
	if _, err := cfg.BuildingTable(); err != nil {
		add("catalog.buildings: %v", err)
	}
}

func validateFirestore(cfg *FirestoreSettings, add func(string, ...any)) {
	switch cfg.Auth {
	case AuthAPIKey, AuthServiceAccount, AuthToken:
	default:
		add("firestore.auth must be one of %s, %s, %s, got %q", AuthAPIKey, AuthServiceAccount, AuthToken, cfg.Auth)
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("firestore.base_url %q is not an absolute URL", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.Project) == "" {
		add("firestore.project must not be empty")
	}
	if strings.TrimSpace(cfg.AppID) == "" || strings.Contains(cfg.AppID, "/") {
		add("firestore.app_id %q must be a single path segment", cfg.AppID)
	}
	if cfg.Timeout <= 0 {
		add("firestore.timeout must be positive")
	}
	if cfg.PageSize <= 0 {
		add("firestore.page_size must be positive")
	}
	if cfg.CacheTTL < 0 {
		add("firestore.cache_ttl must not be negative")
	}
	if cfg.MaxAttempts < 1 {
		add("firestore.max_attempts must be at least 1")
	}
}

func validateUpdate(cfg *UpdateSettings, add func(string, ...any)) {
	if !yearPattern.MatchString(cfg.Year) {
		add("update.year %q must be a four digit year", cfg.Year)
	}
	switch cfg.Target {
	case TargetFirestore, TargetLocal:
	default:
		add("update.target must be %s or %s, got %q", TargetFirestore, TargetLocal, cfg.Target)
	}
	if cfg.WritesPerSecond < 0 {
		add("update.writes_per_second must not be negative")
	}
}

// RequireCredentials checks that the selected Firestore auth mode has what it
// needs. Only commands that talk to Firestore call it.
func (cfg *FirestoreSettings) RequireCredentials() error {
	var missing string
	switch cfg.Auth {
	case AuthAPIKey:
		if cfg.APIKey == "" {
			missing = "firestore.api_key or api_key_file (FIREINSPECT_API_KEY)"
		}
	case AuthServiceAccount:
		if cfg.CredentialsFile == "" {
			missing = "firestore.credentials_file (GOOGLE_APPLICATION_CREDENTIALS)"
		}
	case AuthToken:
		if cfg.Token == "" {
			missing = "firestore.token or token_file (FIREINSPECT_TOKEN)"
		}
	}
	if missing == "" {
		return nil
	}
	return errors.Newf("firestore auth %q requires %s", cfg.Auth, missing).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Build()
}
