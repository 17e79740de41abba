// envstage installs a runtime environment into a distributed filesystem
// and prints the job registration needed to use it.
//
// Usage:
//
//	envstage install   --archive A --dest D --plugin P [--plugins a,b]
//	envstage status    --dest D
//	envstage configure --dest D
//	envstage unlock    --dest D
//
// Every command accepts --config, --log-level and --metrics-file. The
// config path falls back to $ENVSTAGE_CONFIG. Errors are written to stderr
// as JSON and the process exits with status 1.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/jmgilman/envstage/config"
	"github.com/jmgilman/envstage/distcache"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/billy"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/internal/metrics"
	"github.com/jmgilman/envstage/jobconf"
)

const usage = `usage: envstage <command> [flags]

commands:
  install    install the environment unless present, then print its registration
  status     print whether the environment is installed, locked or absent
  configure  print the registration of an installed environment
  unlock     remove a stale lock marker
`

func main() {
	a := &app{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		local:       billy.NewLocal(),
		openStorage: openStorage,
	}
	os.Exit(a.run(os.Args[1:]))
}

func openStorage(cfg *config.Config) (core.DistributedFS, error) {
	return cfg.Storage.Open(cfg.Replication)
}

// app carries the process dependencies so tests can swap them out.
type app struct {
	stdout      io.Writer
	stderr      io.Writer
	local       core.FS
	openStorage func(*config.Config) (core.DistributedFS, error)
}

type options struct {
	configPath  string
	logLevel    string
	metricsFile string
	dest        string
	archive     string
	plugin      string
	plugins     string
}

func (a *app) run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(a.stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd := args[0]
	var opts options
	flags := pflag.NewFlagSet("envstage "+cmd, pflag.ContinueOnError)
	flags.SetOutput(a.stderr)
	flags.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default $"+config.EnvVar+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.StringVar(&opts.dest, "dest", "", "installation root on the distributed filesystem")
	if cmd == "install" {
		flags.StringVar(&opts.archive, "archive", "", "local path of the environment archive")
		flags.StringVar(&opts.plugin, "plugin", "", "local path of the big-data plugin folder")
		flags.StringVar(&opts.plugins, "plugins", "", "comma-separated additional plugin names")
	}

	if err := flags.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return a.fail(errors.Wrap(err, errors.CodeInvalidInput, "invalid flags"))
	}

	if err := a.exec(cmd, opts); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) fail(err error) int {
	_ = json.NewEncoder(a.stderr).Encode(errors.ToJSON(err))
	return 1
}

func (a *app) exec(cmd string, opts options) error {
	switch cmd {
	case "install", "status", "configure", "unlock":
	default:
		return errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "unknown command %q", cmd),
			"command", cmd,
		)
	}
	if opts.dest == "" {
		return errors.MissingArgument("--dest")
	}

	cfg, err := config.Load(a.local, config.Path(opts.configPath))
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewProm("envstage", reg)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to register metrics")
	}
	if opts.metricsFile != "" {
		defer func() {
			if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
				logger.Warn("failed to write metrics", "path", opts.metricsFile, "error", err)
			}
		}()
	}

	dfs, err := a.openStorage(cfg)
	if err != nil {
		return err
	}
	util, err := distcache.New(a.local, append(cfg.Options(),
		distcache.WithLogger(logger),
		distcache.WithMetrics(rec),
	)...)
	if err != nil {
		return err
	}

	switch cmd {
	case "install":
		return a.install(util, dfs, opts)
	case "status":
		return a.status(dfs, opts.dest)
	case "configure":
		return a.configure(util, dfs, opts.dest)
	default:
		if err := distcache.Unlock(dfs, opts.dest); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "unlocked %s\n", opts.dest)
		return nil
	}
}

func (a *app) install(util *distcache.Util, dfs core.DistributedFS, opts options) error {
	if opts.archive == "" {
		return errors.MissingArgument("--archive")
	}
	if opts.plugin == "" {
		return errors.MissingArgument("--plugin")
	}

	conf := jobconf.NewMapConfiguration()
	installed, err := util.EnsureEnvironment(distcache.InstallRequest{
		Archive:           a.localPath(opts.archive),
		FS:                dfs,
		Destination:       opts.dest,
		BigDataPlugin:     a.localPath(opts.plugin),
		AdditionalPlugins: opts.plugins,
		Conf:              conf,
	})
	if err != nil {
		return err
	}

	if installed {
		fmt.Fprintf(a.stdout, "installed %s\n", opts.dest)
	} else {
		fmt.Fprintf(a.stdout, "already installed %s\n", opts.dest)
	}
	a.printConf(conf)
	return nil
}

func (a *app) status(dfs core.DistributedFS, dest string) error {
	installed, err := distcache.IsInstalledAt(dfs, dest)
	if err != nil {
		return err
	}
	locked, err := distcache.IsLocked(dfs, dest)
	if err != nil {
		return err
	}

	state := "absent"
	switch {
	case installed:
		state = "installed"
	case locked:
		state = "locked"
	}
	fmt.Fprintf(a.stdout, "%s %s\n", state, dest)
	return nil
}

func (a *app) configure(util *distcache.Util, dfs core.DistributedFS, dest string) error {
	installed, err := distcache.IsInstalledAt(dfs, dest)
	if err != nil {
		return err
	}
	if !installed {
		return errors.WithContext(
			errors.Newf(errors.CodeNotFound, "no environment installed at %s", dest),
			"dest", dest,
		)
	}

	conf := jobconf.NewMapConfiguration()
	if err := util.ConfigureWithEnvironment(conf, dfs, dest); err != nil {
		return err
	}
	a.printConf(conf)
	return nil
}

func (a *app) printConf(conf *jobconf.MapConfiguration) {
	for _, key := range conf.Keys() {
		value, _ := conf.Get(key)
		fmt.Fprintf(a.stdout, "%s=%s\n", key, value)
	}
}

// localPath makes relative paths absolute for the host filesystem, which
// resolves every path from its root.
func (a *app) localPath(p string) string {
	if a.local.Type() != core.FSTypeLocal || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
