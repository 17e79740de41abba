package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/envstage/config"
	"github.com/jmgilman/envstage/distcache"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/billy"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/localdfs"
	"github.com/jmgilman/envstage/internal/testutil"
)

const (
	configFile = "/etc/envstage.yaml"
	archive    = "/bundles/env.zip"
	plugin     = "/work/big-data-plugin"
	dest       = "/cluster/env"
)

type harness struct {
	app    *app
	dfs    core.DistributedFS
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvVar, "")

	local := billy.NewMemory()
	require.NoError(t, local.MkdirAll("/etc", 0o755))
	require.NoError(t, local.WriteFile(configFile, []byte("temp_dir: /scratch\nreplication: 3\n"), 0o644))
	data, err := testutil.ZipBytes(testutil.EmptyEnvironment()...)
	testutil.WriteArchive(t, local, archive, data, err)
	testutil.WriteSampleTree(t, local, plugin)

	h := &harness{
		dfs:    localdfs.New(billy.NewMemory()),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = &app{
		stdout: h.stdout,
		stderr: h.stderr,
		local:  local,
		openStorage: func(*config.Config) (core.DistributedFS, error) {
			return h.dfs, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.app.run(append(args, "--config", configFile))
}

func (h *harness) errorResponse(t *testing.T) errors.ErrorResponse {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(h.stderr.String()), "\n")
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &resp), h.stderr.String())
	return resp
}

func TestInstall(t *testing.T) {
	h := newHarness(t)

	code := h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest)
	require.Equal(t, 0, code, h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, "installed "+dest+"\n")
	assert.Contains(t, out, "mapred.cache.files=")
	assert.Contains(t, out, dest+"/plugins#plugins")
	assert.Contains(t, out, "mapred.job.classpath.files=")
	assert.Contains(t, out, dest+"/lib/kettle-core.jar")
	assert.Contains(t, out, "mapred.create.symlink=yes\n")

	r, err := h.dfs.Replication(dest + "/lib/kettle-engine.jar")
	require.NoError(t, err)
	assert.Equal(t, int16(3), r)

	code = h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest)
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "already installed "+dest+"\n")
}

func TestInstall_MissingFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		param string
	}{
		{name: "dest", args: []string{"install", "--archive", archive, "--plugin", plugin}, param: "--dest"},
		{name: "archive", args: []string{"install", "--plugin", plugin, "--dest", dest}, param: "--archive"},
		{name: "plugin", args: []string{"install", "--archive", archive, "--dest", dest}, param: "--plugin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.Equal(t, 1, h.run(tt.args...))

			resp := h.errorResponse(t)
			assert.Equal(t, string(errors.CodeMissingArgument), resp.Code)
			assert.Equal(t, tt.param+" is required", resp.Message)
		})
	}
}

func TestInstall_Locked(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, distcache.Lock(h.dfs, dest))

	require.Equal(t, 1, h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest))
	resp := h.errorResponse(t)
	assert.Equal(t, string(errors.CodeConflict), resp.Code)
	assert.Equal(t, dest+"/.lock", resp.Context["lock"])
}

func TestStatusAndUnlock(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("status", "--dest", dest))
	assert.Equal(t, "absent "+dest+"\n", h.stdout.String())

	require.NoError(t, distcache.Lock(h.dfs, dest))
	require.Equal(t, 0, h.run("status", "--dest", dest))
	assert.Equal(t, "locked "+dest+"\n", h.stdout.String())

	require.Equal(t, 0, h.run("unlock", "--dest", dest))
	assert.Equal(t, "unlocked "+dest+"\n", h.stdout.String())
	locked, err := distcache.IsLocked(h.dfs, dest)
	require.NoError(t, err)
	assert.False(t, locked)

	require.Equal(t, 0, h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest))
	require.Equal(t, 0, h.run("status", "--dest", dest))
	assert.Equal(t, "installed "+dest+"\n", h.stdout.String())
}

func TestConfigure(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 1, h.run("configure", "--dest", dest))
	assert.Equal(t, string(errors.CodeNotFound), h.errorResponse(t).Code)

	require.Equal(t, 0, h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest))
	require.Equal(t, 0, h.run("configure", "--dest", dest))
	out := h.stdout.String()
	assert.NotContains(t, out, "installed")
	assert.Contains(t, out, "mapred.job.classpath.files=")
	assert.Contains(t, out, dest+"/lib/kettle-engine.jar")
}

func TestMetricsFile(t *testing.T) {
	h := newHarness(t)
	metricsFile := filepath.Join(t.TempDir(), "envstage.prom")

	code := h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest, "--metrics-file", metricsFile)
	require.Equal(t, 0, code, h.stderr.String())

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `envstage_installs_total{result="installed"} 1`)
	assert.Contains(t, string(data), "envstage_staged_paths_total")
}

func TestLogLevel(t *testing.T) {
	h := newHarness(t)

	code := h.run("install", "--archive", archive, "--plugin", plugin, "--dest", dest, "--log-level", "debug")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stderr.String(), "level=DEBUG")
	assert.Contains(t, h.stderr.String(), "installed environment")

	require.Equal(t, 1, h.run("status", "--dest", dest, "--log-level", "loud"))
	assert.Equal(t, string(errors.CodeInvalidConfig), h.errorResponse(t).Code)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.app.run(nil))
	assert.Contains(t, h.stderr.String(), "usage: envstage")

	require.Equal(t, 1, h.run("deploy", "--dest", dest))
	resp := h.errorResponse(t)
	assert.Equal(t, string(errors.CodeInvalidInput), resp.Code)
	assert.Equal(t, "deploy", resp.Context["command"])

	require.Equal(t, 1, h.run("status", "--bogus"))
	assert.Contains(t, h.stderr.String(), `"INVALID_INPUT"`)
}

func TestMissingConfigFile(t *testing.T) {
	h := newHarness(t)
	h.stdout.Reset()
	h.stderr.Reset()

	require.Equal(t, 1, h.app.run([]string{"status", "--dest", dest, "--config", "/etc/missing.yaml"}))
	assert.Equal(t, string(errors.CodeInvalidConfig), h.errorResponse(t).Code)
}
