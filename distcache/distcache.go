package distcache

import (
	"log/slog"

	"github.com/jmgilman/envstage/archive"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/internal/metrics"
	"github.com/jmgilman/envstage/jobconf"
	"github.com/jmgilman/envstage/plugin"
)

// Layout constants shared by staging and detection.
const (
	BigDataPluginFolderName = "big-data-plugin"
	LockFileName            = ".lock"
	LibDirName              = "lib"
	PluginsDirName          = "plugins"
)

// StagedMode is applied to every staged path.
const StagedMode = 0o755

// DefaultReplication is used when no replication factor is configured.
const DefaultReplication int16 = 10

// Util stages environments from a local filesystem into distributed ones.
type Util struct {
	local        core.FS
	resolver     *plugin.Resolver
	registrar    jobconf.Registrar
	replication  int16
	tempDir      string
	configLibDir string
	extractOpts  archive.ExtractOptions
	logger       *slog.Logger
	metrics      metrics.Recorder

	baseFolders []string
}

// Option configures a Util.
type Option func(*Util)

// WithReplication sets the replication factor applied to staged paths.
func WithReplication(n int16) Option {
	return func(u *Util) { u.replication = n }
}

// WithPathSeparator sets the separator used for job registrations.
func WithPathSeparator(sep string) Option {
	return func(u *Util) { u.registrar = jobconf.NewRegistrar(sep) }
}

// WithPluginBaseFolders sets the folders searched for plugins, in order.
func WithPluginBaseFolders(folders ...string) Option {
	return func(u *Util) { u.baseFolders = folders }
}

// WithTempDir sets where temporary extraction directories are created.
// Empty uses the local filesystem's default.
func WithTempDir(dir string) Option {
	return func(u *Util) { u.tempDir = dir }
}

// WithConfigLibDir names a local folder whose files are staged into the
// environment's lib folder on install.
func WithConfigLibDir(dir string) Option {
	return func(u *Util) { u.configLibDir = dir }
}

// WithExtractOptions bounds archive extraction.
func WithExtractOptions(opts archive.ExtractOptions) Option {
	return func(u *Util) { u.extractOpts = opts }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(u *Util) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(u *Util) {
		if m != nil {
			u.metrics = m
		}
	}
}

// New returns a Util reading archives and plugins from local.
func New(local core.FS, opts ...Option) (*Util, error) {
	if local == nil {
		return nil, errors.MissingArgument("local filesystem")
	}

	u := &Util{
		local:       local,
		registrar:   jobconf.NewRegistrar(""),
		replication: DefaultReplication,
		logger:      slog.New(slog.DiscardHandler),
		metrics:     metrics.Noop{},
	}
	for _, opt := range opts {
		opt(u)
	}

	if u.replication < 1 {
		return nil, errors.Newf(errors.CodeInvalidConfig, "replication must be at least 1, got %d", u.replication)
	}
	u.resolver = plugin.NewResolver(local, u.baseFolders)
	return u, nil
}

// Replication returns the replication factor applied to staged paths.
func (u *Util) Replication() int16 {
	return u.replication
}

// Registrar returns the registrar used for job configuration.
func (u *Util) Registrar() jobconf.Registrar {
	return u.registrar
}
