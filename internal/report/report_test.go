package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/godi/component"
	"gopkg.in/yaml.v3"
)

type helloService struct{}

type totoService struct{}

func sampleDump() *Dump {
	return &Dump{
		RunID: "run-1",
		Sources: []Source{
			{
				Source: "plugins/module01.so",
				Components: []Entry{
					{ID: 1, Name: "hello", Type: "*hello.Service", Properties: map[string]string{"version": "1", "author": "kia"}},
					{ID: 2, Name: "toto", Type: "*toto.Service"},
				},
			},
			{
				Source:     "plugins/module02.so",
				Components: []Entry{{ID: 3, Name: "toto", Type: "*toto.Service"}},
			},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleDump()))

	want := "plugins/module01.so:\n" +
		"hello\n\tauthor=kia\n\tversion=1\n\n" +
		"toto\n\n" +
		"plugins/module02.so:\n" +
		"toto\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteDefinitionAndRepository(t *testing.T) {
	d := sampleDump()

	var def bytes.Buffer
	require.NoError(t, WriteDefinition(&def, d.Sources[0]))
	assert.Equal(t, "(plugins/module01.so)\n[hello]\nauthor=kia\nversion=1\n\n[toto]\n\n", def.String())

	var rep bytes.Buffer
	require.NoError(t, WriteRepository(&rep, d))
	assert.Equal(t, def.String()+"(plugins/module02.so)\n[toto]\n\n", rep.String())
}

func TestWrite_StructuredFormats(t *testing.T) {
	d := sampleDump()

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, d, FormatYAML))
		assert.Contains(t, buf.String(), "run_id: run-1\n")

		var got Dump
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *d, got)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, d, FormatJSON))

		var got Dump
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *d, got)
	})

	t.Run("hcl", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, d, FormatHCL))
		out := buf.String()

		assert.Contains(t, out, `run_id = "run-1"`)
		assert.Contains(t, out, `source "plugins/module01.so" {`)
		assert.Contains(t, out, `component "hello" {`)
		assert.Contains(t, out, `type = "*hello.Service"`)
		assert.Contains(t, out, `version = "1"`)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(io.Discard, d, Format("xml")))
	})
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestDump_AddSnapshotsLocalDescriptors(t *testing.T) {
	// --- Arrange ---
	g := component.NewRegistrar()
	parent := g.New(nil)
	parent.Set("inherited", &totoService{}, nil)
	r := g.New(parent)
	props := component.Properties{"version": "2"}
	hello := r.Set("", &helloService{}, props)
	toto := r.Set("toto", &totoService{}, nil)
	props["version"] = "mutated"

	d := NewDump()

	// --- Act ---
	added := d.Add("lib.so", r)
	skipped := d.Add("empty.so", g.New(nil))

	// --- Assert ---
	assert.True(t, added)
	assert.False(t, skipped)
	_, err := uuid.Parse(d.RunID)
	require.NoError(t, err)
	require.Len(t, d.Sources, 1)
	assert.Equal(t, []Entry{
		{ID: int64(hello.ID()), Name: "*report.helloService", Type: "*report.helloService", Properties: map[string]string{"version": "2"}},
		{ID: int64(toto.ID()), Name: "toto", Type: "*report.totoService"},
	}, d.Sources[0].Components)
	assert.Equal(t, 2, d.Len())
}

func TestNewPublisher_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"://nope", "localhost:3000"} {
		_, err := NewPublisher(raw, "")
		assert.ErrorContains(t, err, "failed to parse URL", raw)
	}
}

func TestPublisher_UnreachableServer(t *testing.T) {
	// --- Arrange ---
	p, err := NewPublisher("http://127.0.0.1:1/socket.io/", "")
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	p.ConnectTimeout = 2 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// --- Act ---
	err = p.Publish(ctx, sampleDump())

	// --- Assert ---
	require.Error(t, err)
}

func TestSignal_KeepsFirstOutcomeAndNeverBlocks(t *testing.T) {
	ch := make(chan error, 1)
	first := errors.New("connect error")

	sent := make(chan struct{})
	go func() {
		signal(ch, first)
		signal(ch, nil)
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("second signal blocked")
	}
	assert.Equal(t, first, <-ch)
}
