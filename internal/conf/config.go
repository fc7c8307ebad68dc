// config.go: settings for fireinspect and the functions to load and save them.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/welling-fm/fireinspect/internal/catalog"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/secrets"
)

//go:embed config.yaml
var configFiles embed.FS

// Firestore auth modes
const (
	AuthAPIKey         = "api_key"
	AuthServiceAccount = "service_account"
	AuthToken          = "token"
)

// Update targets
const (
	TargetFirestore = "firestore"
	TargetLocal     = "local"
)

// InputSettings controls report discovery.
type InputSettings struct {
	Dir        string   `mapstructure:"dir" yaml:"dir"`               // directory holding report files
	Extensions []string `mapstructure:"extensions" yaml:"extensions"` // accepted file extensions, lowercase with dot
}

// OutputSettings names the files a parse run produces.
type OutputSettings struct {
	Artifact string `mapstructure:"artifact" yaml:"artifact"` // JSON array of parsed reports
	Page     string `mapstructure:"page" yaml:"page"`         // self-contained uploader page
}

// ParserSettings tunes the report parser.
type ParserSettings struct {
	StandaloneCircuits    bool `mapstructure:"standalone_circuits" yaml:"standalone_circuits"`         // accept "B-11 Gym" lines without an EM token
	NoteContinuationLines int  `mapstructure:"note_continuation_lines" yaml:"note_continuation_lines"` // lines appended to a note
}

// CatalogSettings overrides the built-in lookup tables. Empty lists keep the defaults.
type CatalogSettings struct {
	Buildings   []catalog.BuildingAlias `mapstructure:"buildings" yaml:"buildings"`
	DeviceTypes []catalog.DeviceType    `mapstructure:"device_types" yaml:"device_types"`
}

// FirestoreSettings configures the REST client.
type FirestoreSettings struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	Project         string        `mapstructure:"project" yaml:"project"`
	AppID           string        `mapstructure:"app_id" yaml:"app_id"`
	Auth            string        `mapstructure:"auth" yaml:"auth"`                 // api_key, service_account or token
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`           // literal or ${VAR}
	APIKeyFile      string        `mapstructure:"api_key_file" yaml:"api_key_file"` // overrides api_key
	CredentialsFile string        `mapstructure:"credentials_file" yaml:"credentials_file"`
	Token           string        `mapstructure:"token" yaml:"token"`
	TokenFile       string        `mapstructure:"token_file" yaml:"token_file"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PageSize        int           `mapstructure:"page_size" yaml:"page_size"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	MaxAttempts     int           `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// UpdateSettings controls the remote update run.
type UpdateSettings struct {
	Year            string  `mapstructure:"year" yaml:"year"`     // inspection year a record must carry
	Target          string  `mapstructure:"target" yaml:"target"` // firestore or local
	WritesPerSecond float64 `mapstructure:"writes_per_second" yaml:"writes_per_second"`
	DryRun          bool    `mapstructure:"dry_run" yaml:"dry_run"`
	Snapshot        bool    `mapstructure:"snapshot" yaml:"snapshot"` // keep a copy of each record before it is overwritten
}

// DatastoreSettings locates the local sqlite database.
type DatastoreSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// NotificationSettings lists shoutrrr service URLs for run summaries.
type NotificationSettings struct {
	URLs  []string `mapstructure:"urls" yaml:"urls"`
	Title string   `mapstructure:"title" yaml:"title"`
}

// MetricsSettings controls the Prometheus textfile export.
type MetricsSettings struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// ServerSettings is used by the serve command.
type ServerSettings struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// FirebaseSettings is the web SDK config embedded in the uploader page.
type FirebaseSettings struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key" json:"apiKey"`
	AuthDomain        string `mapstructure:"auth_domain" yaml:"auth_domain" json:"authDomain"`
	ProjectID         string `mapstructure:"project_id" yaml:"project_id" json:"projectId"`
	StorageBucket     string `mapstructure:"storage_bucket" yaml:"storage_bucket" json:"storageBucket"`
	MessagingSenderID string `mapstructure:"messaging_sender_id" yaml:"messaging_sender_id" json:"messagingSenderId"`
	AppID             string `mapstructure:"app_id" yaml:"app_id" json:"appId"`
}

// Settings contains all configuration options for fireinspect.
type Settings struct {
	Debug        bool                 `mapstructure:"debug" yaml:"debug"`
	Logging      logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Input        InputSettings        `mapstructure:"input" yaml:"input"`
	Output       OutputSettings       `mapstructure:"output" yaml:"output"`
	Parser       ParserSettings       `mapstructure:"parser" yaml:"parser"`
	Catalog      CatalogSettings      `mapstructure:"catalog" yaml:"catalog"`
	Firestore    FirestoreSettings    `mapstructure:"firestore" yaml:"firestore"`
	Update       UpdateSettings       `mapstructure:"update" yaml:"update"`
	Datastore    DatastoreSettings    `mapstructure:"datastore" yaml:"datastore"`
	Notification NotificationSettings `mapstructure:"notification" yaml:"notification"`
	Metrics      MetricsSettings      `mapstructure:"metrics" yaml:"metrics"`
	Server       ServerSettings       `mapstructure:"server" yaml:"server"`
	Firebase     FirebaseSettings     `mapstructure:"firebase" yaml:"firebase"`

	// ConfigFile is the file the settings were read from, runtime value
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables. An empty
// configFile searches the default locations and creates a default file in the
// user config directory when none exists.
func Load(configFile string) (*Settings, error) {
	var searchPaths []string
	if configFile == "" {
		paths, err := GetDefaultConfigPaths()
		if err != nil {
			return nil, fmt.Errorf("error getting default config paths: %w", err)
		}
		searchPaths = paths
	}

	settings, err := load(viper.New(), configFile, searchPaths)
	if err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

func load(v *viper.Viper, configFile string, searchPaths []string) (*Settings, error) {
	if err := initViper(v, configFile, searchPaths); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.ConfigFile = v.ConfigFileUsed()

	if err := resolveSecrets(settings); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}
	return settings, nil
}

// initViper sets defaults and environment bindings, then reads the config file.
func initViper(v *viper.Viper, configFile string, searchPaths []string) error {
	v.SetConfigType("yaml")
	setDefaultConfig(v)
	if err := configureEnvironmentVariables(v); err != nil {
		// Bad environment values are reported again by validation.
		fmt.Fprintln(os.Stderr, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}

	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && len(searchPaths) > 0 {
			return createDefaultConfig(v, searchPaths[len(searchPaths)-1])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it.
func createDefaultConfig(v *viper.Viper, dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := writeFileAtomic(configPath, []byte(getDefaultConfig())); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Created default config file at:", configPath)
	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return string(data)
}

// GetSettings returns the settings of the last successful Load, or nil.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath. Comments and key order of an
// existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return writeFileAtomic(configPath, yamlData)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Rename(tempFileName, path); err != nil {
		return fmt.Errorf("error renaming temporary file: %w", err)
	}
	return nil
}

// resolveSecrets reads credential files and expands ${VAR} references in
// credentials and notification URLs.
func resolveSecrets(settings *Settings) error {
	fs := &settings.Firestore
	var err error
	if fs.APIKey, err = secrets.Resolve(fs.APIKeyFile, fs.APIKey); err != nil {
		return fmt.Errorf("firestore.api_key: %w", err)
	}
	if fs.Token, err = secrets.Resolve(fs.TokenFile, fs.Token); err != nil {
		return fmt.Errorf("firestore.token: %w", err)
	}
	if settings.Firebase.APIKey, err = secrets.Expand(settings.Firebase.APIKey); err != nil {
		return fmt.Errorf("firebase.api_key: %w", err)
	}
	for i, u := range settings.Notification.URLs {
		if settings.Notification.URLs[i], err = secrets.Expand(u); err != nil {
			return fmt.Errorf("notification.urls[%d]: %w", i, err)
		}
	}
	return nil
}

// DeviceTable builds the device legend, falling back to the built-in one.
func (c *CatalogSettings) DeviceTable() (*catalog.DeviceTable, error) {
	if len(c.DeviceTypes) == 0 {
		return catalog.DefaultDeviceTable(), nil
	}
	return catalog.NewDeviceTable(c.DeviceTypes)
}

// BuildingTable builds the building aliases, falling back to the built-in ones.
func (c *CatalogSettings) BuildingTable() (*catalog.BuildingTable, error) {
	if len(c.Buildings) == 0 {
		return catalog.DefaultBuildingTable(), nil
	}
	return catalog.NewBuildingTable(c.Buildings)
}
