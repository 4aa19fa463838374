package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/report"
	"github.com/vk/godi/internal/testutil"
	"gopkg.in/yaml.v3"
)

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}
}

func TestRun_InputsReportsEachLibrary(t *testing.T) {
	// --- Arrange ---
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "plugins/a.so", "plugins/b.so", "plugins/empty.so", "plugins/notes.txt")
	g := component.NewRegistrar()
	opener := testutil.NewFakeOpener(g).
		AddGreeters("plugins/a.so", "hello").
		AddGreeters("plugins/b.so", "toto", "titi").
		AddGreeters("plugins/empty.so")
	cfg, err := NewConfig(Config{Inputs: []string{"plugins"}, WriteDefinitions: true, WriteRepository: true})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg, WithFs(fs), WithRegistrar(g), WithOpener(opener))

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t,
		"plugins/a.so:\nhello\n\tlib=a.so\n\n"+
			"plugins/b.so:\ntoto\n\tlib=b.so\n\ntiti\n\tlib=b.so\n\n",
		out.String())

	def, err := afero.ReadFile(fs, "plugins/a.so.didef")
	require.NoError(t, err)
	assert.Equal(t, "(plugins/a.so)\n[hello]\nlib=a.so\n\n", string(def))
	exists, err := afero.Exists(fs, "plugins/empty.so.didef")
	require.NoError(t, err)
	assert.False(t, exists, "libraries that register nothing get no definition")

	rep, err := afero.ReadFile(fs, DefaultRepositoryPath)
	require.NoError(t, err)
	assert.Contains(t, string(rep), "(plugins/b.so)\n[toto]\nlib=b.so\n\n[titi]\n")

	assert.Zero(t, g.Global().Len(), "per-file registries keep the global registry clean")
	assert.Len(t, g.Registries(), 1, "per-file registries are closed after reporting")
}

func TestRun_MissingInputIsSkipped(t *testing.T) {
	cfg, err := NewConfig(Config{Inputs: []string{"nowhere"}})
	require.NoError(t, err)
	a, out, logs := SetupAppTest(t, cfg, WithFs(afero.NewMemMapFs()), WithRegistrar(component.NewRegistrar()))

	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Skipping input.")
	assert.Contains(t, logs.String(), "error accessing path nowhere")
}

func TestRun_Manifest(t *testing.T) {
	// --- Arrange ---
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/srv/core.so", "/srv/plugins/libsvc_1.so", "/srv/plugins/libsvc_2.so", "/srv/plugins/libother.so", "/srv/plugins/libsvc_bad.so")
	manifest := `
registry "plugins" {
  parent = "global"
}

load "core" {
  paths = ["core.so"]
}

load "services" {
  registry  = "plugins"
  directory = "plugins"
  filter    = "svc"
}
`
	require.NoError(t, afero.WriteFile(fs, "/srv/didump.hcl", []byte(manifest), 0o644))
	g := component.NewRegistrar()
	opener := testutil.NewFakeOpener(g).
		AddGreeters("/srv/core.so", "core").
		AddGreeters("/srv/plugins/libsvc_1.so", "svc1").
		AddGreeters("/srv/plugins/libsvc_2.so", "svc2").
		AddGreeters("/srv/plugins/libother.so", "other")
	cfg, err := NewConfig(Config{Manifest: "/srv/didump.hcl", Format: "yaml"})
	require.NoError(t, err)
	a, out, logs := SetupAppTest(t, cfg, WithFs(fs), WithRegistrar(g), WithOpener(opener))

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	var dump report.Dump
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &dump))
	require.Len(t, dump.Sources, 2)
	assert.Equal(t, "global", dump.Sources[0].Source)
	assert.Equal(t, "core", dump.Sources[0].Components[0].Name)
	assert.Equal(t, "plugins", dump.Sources[1].Source)
	var names []string
	for _, e := range dump.Sources[1].Components {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"svc1", "svc2"}, names)
	assert.Contains(t, logs.String(), "Some libraries failed to load.")

	plugins := g.Registries()
	var reg *component.Registry
	for _, r := range plugins {
		if r.Name() == "plugins" {
			reg = r
		}
	}
	require.NotNil(t, reg)
	assert.Same(t, g.Global(), reg.Parent())
	_, ok := reg.GetByName("core")
	assert.True(t, ok, "lookups fall through to the global registry")
}

func TestRun_JSONFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "a.so")
	g := component.NewRegistrar()
	cfg, err := NewConfig(Config{Inputs: []string{"a.so"}, Format: "json"})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg, WithFs(fs), WithRegistrar(g), WithOpener(testutil.NewFakeOpener(g).AddGreeters("a.so", "hello")))

	require.NoError(t, a.Run(context.Background()))

	var dump report.Dump
	require.NoError(t, json.Unmarshal(out.Bytes(), &dump))
	require.Len(t, dump.Sources, 1)
	assert.Equal(t, "*testutil.Greeter", dump.Sources[0].Components[0].Type)
	assert.NotEmpty(t, dump.RunID)
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.Inputs)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "none", cfg.Trace)
	assert.Equal(t, DefaultRepositoryPath, cfg.RepositoryPath)

	for name, bad := range map[string]Config{
		"format":     {Format: "xml"},
		"log format": {LogFormat: "xml"},
		"log level":  {LogLevel: "trace"},
		"trace":      {Trace: "otlp"},
		"port":       {HealthcheckPort: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfig(bad)
			assert.Error(t, err)
		})
	}
}

func TestMux_Endpoints(t *testing.T) {
	// --- Arrange ---
	g := component.NewRegistrar()
	reg := g.New(nil)
	reg.Set("hello", &testutil.Greeter{Name: "hello"}, component.Properties{"v": "1"})
	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	a, _, _ := SetupAppTest(t, cfg, WithRegistrar(g))
	srv := httptest.NewServer(a.newMux("run-1", "plugins", reg))
	defer srv.Close()

	// --- Act & Assert ---
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/components")
	require.NoError(t, err)
	defer resp.Body.Close()
	var dump report.Dump
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dump))
	assert.Equal(t, "run-1", dump.RunID)
	require.Len(t, dump.Sources, 1)
	assert.Equal(t, "hello", dump.Sources[0].Components[0].Name)
	assert.Equal(t, map[string]string{"v": "1"}, dump.Sources[0].Components[0].Properties)
}

func TestWatch_LoadsExistingAndNewLibraries(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	existing := filepath.Join(dir, "libsvc_old.so")
	fresh := filepath.Join(dir, "libsvc_new.so")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	g := component.NewRegistrar()
	opener := testutil.NewFakeOpener(g).AddGreeters(existing, "old").AddGreeters(fresh, "new")
	cfg, err := NewConfig(Config{WatchDir: dir, WatchFilter: "svc"})
	require.NoError(t, err)
	a, _, logs := SetupAppTest(t, cfg, WithRegistrar(g), WithOpener(opener))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	// --- Act ---
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Watching for libraries.")
	}, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	// --- Assert ---
	require.Eventually(t, func() bool {
		for _, r := range g.Registries() {
			if r.Name() == "watch" && r.Len() == 2 {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	watching := strings.Index(logs.String(), "Watching for libraries.")
	scanned := strings.Index(logs.String(), "Initial load finished.")
	require.NotEqual(t, -1, scanned)
	assert.Less(t, watching, scanned, "the watcher starts before the initial scan")
}
