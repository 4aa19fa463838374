package integration_tests

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/app"
	"github.com/vk/godi/internal/cli"
	"github.com/vk/godi/internal/testutil"
)

// harnessResult holds the outcomes of a didump run.
type harnessResult struct {
	Out       string
	Logs      string
	Err       error
	Fs        afero.Fs
	Registrar *component.Registrar
}

// runDidump executes the CLI against an in-memory file system seeded with
// files. Libraries are declared on the opener passed to setup.
func runDidump(t *testing.T, files map[string]string, setup func(o *testutil.FakeOpener), args ...string) *harnessResult {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	g := component.NewRegistrar()
	opener := testutil.NewFakeOpener(g)
	if setup != nil {
		setup(opener)
	}

	var out bytes.Buffer
	logs := &testutil.SafeBuffer{}
	err := cli.Execute(context.Background(), append([]string{"--log-level", "debug"}, args...), &out, logs,
		app.WithFs(fs), app.WithRegistrar(g), app.WithOpener(opener))

	t.Cleanup(func() {
		if os.Getenv("DIDUMP_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &harnessResult{Out: out.String(), Logs: logs.String(), Err: err, Fs: fs, Registrar: g}
}

func registryNamed(g *component.Registrar, name string) *component.Registry {
	for _, r := range g.Registries() {
		if r.Name() == name {
			return r
		}
	}
	return nil
}
