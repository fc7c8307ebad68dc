// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatic environment override, e.g.
// FIREINSPECT_UPDATE_TARGET for update.target.
const EnvPrefix = "FIREINSPECT"

// envBinding holds metadata for explicit environment variable bindings
type envBinding struct {
	ConfigKey string             // viper config key
	EnvVar    string             // environment variable name
	Validate  func(string) error // optional validation function
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// getEnvBindings returns the short names for secrets and frequently changed values
func getEnvBindings() []envBinding {
	return []envBinding{
		{"firestore.api_key", "FIREINSPECT_API_KEY", nil},
		{"firestore.api_key_file", "FIREINSPECT_API_KEY_FILE", validateEnvFile},
		{"firestore.token", "FIREINSPECT_TOKEN", nil},
		{"firestore.token_file", "FIREINSPECT_TOKEN_FILE", validateEnvFile},
		{"firestore.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS", validateEnvFile},
		{"firestore.project", "FIREINSPECT_PROJECT", nil},
		{"update.year", "FIREINSPECT_YEAR", validateEnvYear},
	}
}

// configureEnvironmentVariables enables prefixed overrides and the explicit bindings
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return bindEnvVars(v)
}

// bindEnvVars binds each variable and validates values that are set
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvYear(value string) error {
	if !yearPattern.MatchString(value) {
		return fmt.Errorf("must be a four digit year")
	}
	return nil
}

func validateEnvFile(value string) error {
	info, err := os.Stat(value)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	return nil
}
