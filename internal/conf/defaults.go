// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/welling-fm/fireinspect/internal/logger"
)

// Default values shared with the command layer
const (
	DefaultBaseURL   = "https://firestore.googleapis.com/v1"
	DefaultProject   = "fire-inspection-7d90b"
	DefaultAppID     = "welling-fm"
	DefaultYear      = "2025"
	DefaultArtifact  = "parsed-fire-inspections.json"
	DefaultPage      = "upload-fire-inspections.html"
	DefaultDatastore = "fireinspect.db"
)

// setDefaultConfig sets default values for every key. Keys must be known to
// viper for AutomaticEnv to override them during Unmarshal.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", "debug")

	v.SetDefault("input.dir", "./reports")
	v.SetDefault("input.extensions", []string{".txt", ".html", ".htm"})

	v.SetDefault("output.artifact", DefaultArtifact)
	v.SetDefault("output.page", DefaultPage)

	v.SetDefault("parser.standalone_circuits", false)
	v.SetDefault("parser.note_continuation_lines", 2)

	v.SetDefault("firestore.base_url", DefaultBaseURL)
	v.SetDefault("firestore.project", DefaultProject)
	v.SetDefault("firestore.app_id", DefaultAppID)
	v.SetDefault("firestore.auth", AuthAPIKey)
	v.SetDefault("firestore.api_key", "")
	v.SetDefault("firestore.api_key_file", "")
	v.SetDefault("firestore.credentials_file", "")
	v.SetDefault("firestore.token", "")
	v.SetDefault("firestore.token_file", "")
	v.SetDefault("firestore.timeout", 30*time.Second)
	v.SetDefault("firestore.page_size", 300)
	v.SetDefault("firestore.cache_ttl", time.Minute)
	v.SetDefault("firestore.max_attempts", 1)

	v.SetDefault("update.year", DefaultYear)
	v.SetDefault("update.target", TargetFirestore)
	v.SetDefault("update.writes_per_second", 5.0)
	v.SetDefault("update.dry_run", false)
	v.SetDefault("update.snapshot", true)

	v.SetDefault("datastore.path", DefaultDatastore)

	v.SetDefault("notification.urls", []string{})
	v.SetDefault("notification.title", "Fire inspection update")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("server.listen", "127.0.0.1:8080")

	v.SetDefault("firebase.api_key", "")
	v.SetDefault("firebase.auth_domain", DefaultProject+".firebaseapp.com")
	v.SetDefault("firebase.project_id", DefaultProject)
	v.SetDefault("firebase.storage_bucket", DefaultProject+".appspot.com")
	v.SetDefault("firebase.messaging_sender_id", "")
	v.SetDefault("firebase.app_id", "")
}
