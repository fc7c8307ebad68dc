// Package runtime holds what a command needs once configuration is loaded:
// settings, the central logger, metrics and constructors for the stores.
package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/welling-fm/fireinspect/internal/buildinfo"
	"github.com/welling-fm/fireinspect/internal/catalog"
	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/datastore"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/firestore"
	"github.com/welling-fm/fireinspect/internal/httpclient"
	"github.com/welling-fm/fireinspect/internal/ingest"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/notification"
	"github.com/welling-fm/fireinspect/internal/observability"
	"github.com/welling-fm/fireinspect/internal/page"
	"github.com/welling-fm/fireinspect/internal/parser"
)

// Options are the global command line flags
type Options struct {
	ConfigFile string
	Debug      bool
	LogLevel   string // overrides logging.default_level and the console level
}

// Context contains runtime state that is not user-configurable. It is
// created in main and filled in by Init before a subcommand runs.
type Context struct {
	Build    *buildinfo.Context
	Settings *conf.Settings
	Logger   *logger.CentralLogger
	Metrics  *observability.Metrics
	Fs       afero.Fs
	Out      io.Writer
}

// New creates a context writing command output to out.
func New(build *buildinfo.Context, out io.Writer) *Context {
	if out == nil {
		out = os.Stdout
	}
	return &Context{Build: build, Fs: afero.NewOsFs(), Out: out}
}

// Init loads the configuration, applies flag overrides and starts logging
// and metrics.
func (c *Context) Init(opts Options) error {
	settings, err := conf.Load(opts.ConfigFile)
	if err != nil {
		return err
	}
	if err := applyOverrides(settings, opts); err != nil {
		return err
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	m, err := observability.NewMetrics()
	if err != nil {
		_ = central.Close()
		return err
	}
	m.CountErrors()

	c.Settings = settings
	c.Logger = central
	c.Metrics = m

	central.Module("main").Debug("configuration loaded",
		logger.String("config_file", settings.ConfigFile),
		logger.String("version", c.Build.Version()))
	return nil
}

func applyOverrides(settings *conf.Settings, opts Options) error {
	if opts.Debug {
		settings.Debug = true
	}
	level := strings.ToLower(strings.TrimSpace(opts.LogLevel))
	if level == "" && settings.Debug {
		level = string(logger.LogLevelDebug)
	}
	if level == "" {
		return nil
	}
	settings.Logging.DefaultLevel = level
	if settings.Logging.Console != nil {
		settings.Logging.Console.Level = level
	}
	return conf.ValidateSettings(settings)
}

// Close writes the metrics textfile and closes the log file. It is safe to
// call on a context that was never initialized.
func (c *Context) Close() error {
	var errs []error
	if c.Metrics != nil && c.Settings != nil {
		errs = append(errs, c.Metrics.WriteTextfile(c.Settings.Metrics.Textfile))
	}
	if c.Logger != nil {
		errs = append(errs, c.Logger.Flush(), c.Logger.Close())
	}
	return errors.Join(errs...)
}

// Log returns the logger of module
func (c *Context) Log(module string) logger.Logger {
	if c.Logger == nil {
		return logger.Global().Module(module)
	}
	return c.Logger.Module(module)
}

// Devices returns the configured device legend
func (c *Context) Devices() (*catalog.DeviceTable, error) {
	return c.Settings.Catalog.DeviceTable()
}

// Parser builds a report parser from the catalog and parser sections.
func (c *Context) Parser() (*parser.Parser, error) {
	devices, err := c.Settings.Catalog.DeviceTable()
	if err != nil {
		return nil, err
	}
	buildings, err := c.Settings.Catalog.BuildingTable()
	if err != nil {
		return nil, err
	}
	return parser.New(devices, buildings, parser.Options{
		StandaloneCircuits:    c.Settings.Parser.StandaloneCircuits,
		NoteContinuationLines: c.Settings.Parser.NoteContinuationLines,
	}, c.Log("parser")), nil
}

// Scanner builds a directory scanner over the configured parser.
func (c *Context) Scanner() (*ingest.Scanner, error) {
	p, err := c.Parser()
	if err != nil {
		return nil, err
	}
	return ingest.NewScanner(c.Fs, p, c.Settings.Input.Extensions, c.Log("ingest"), c.Metrics.Parser), nil
}

// OpenDatastore opens the local database. The caller closes it.
func (c *Context) OpenDatastore() (*datastore.Store, error) {
	return datastore.Open(c.Settings.Datastore.Path, c.Log("datastore"))
}

// RemoteStore connects to the Firestore buildings collection. Credentials are
// checked here rather than at load time so offline commands work without them.
func (c *Context) RemoteStore(ctx context.Context) (*firestore.BuildingStore, error) {
	client, err := firestore.NewClientFromSettings(ctx, &c.Settings.Firestore, firestore.Config{
		UserAgent: httpclient.DefaultUserAgent + "/" + c.Build.Version(),
		Logger:    c.Log("firestore"),
		Metrics:   c.Metrics.Remote,
	})
	if err != nil {
		return nil, err
	}
	return firestore.NewBuildingStore(client, c.Settings.Firestore.AppID), nil
}

// Notifier returns the run summary notifier. It is disabled when no URLs are
// configured or the URLs are invalid.
func (c *Context) Notifier() *notification.Notifier {
	log := c.Log("notification")
	cfg := c.Settings.Notification
	if len(cfg.URLs) == 0 {
		return notification.NewNotifier(nil, cfg.Title, log)
	}
	sender, err := notification.NewShoutrrrSender(cfg.URLs, 0)
	if err != nil {
		log.Warn("notifications disabled", logger.Error(err))
		return notification.NewNotifier(nil, cfg.Title, log)
	}
	return notification.NewNotifier(sender, cfg.Title, log)
}

// Printf writes command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// PageConfig is the uploader page configuration for the current settings.
func (c *Context) PageConfig() page.Config {
	return page.Config{
		Firebase: c.Settings.Firebase,
		AppID:    c.Settings.Firestore.AppID,
		Year:     c.Settings.Update.Year,
	}
}
