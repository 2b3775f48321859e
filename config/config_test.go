package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "sqlite backend", mutate: func(c *Config) { c.Backend = "sqlite" }},
		{name: "backend is case insensitive", mutate: func(c *Config) { c.Backend = "SQLite" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "postgres" }, wantErr: true},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "CRUDSTRATEGY_STORAGE_PATH", EnvVar("storage-path"))
	assert.Equal(t, "CRUDSTRATEGY_PORT", EnvVar("port"))
}

func TestAddr(t *testing.T) {
	c := Default()
	assert.Equal(t, "0.0.0.0:8080", c.Addr())
}

func TestWrite_DefaultAsYAML(t *testing.T) {
	expected := `log-level: info
address: 0.0.0.0
port: 8080
backend: csv
storage-path: ""
templates: ""
`
	var actual bytes.Buffer
	require.NoError(t, Write(&actual, Default(), FormatYAML))
	assert.Equal(t, expected, actual.String())
}

func TestWrite_DefaultAsTOML(t *testing.T) {
	var actual bytes.Buffer
	require.NoError(t, Write(&actual, Default(), FormatTOML))

	out := actual.String()
	assert.Contains(t, out, `log-level = "info"`)
	assert.Contains(t, out, `address = "0.0.0.0"`)
	assert.Contains(t, out, `port = 8080`)
	assert.Contains(t, out, `backend = "csv"`)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var out bytes.Buffer
	err := Write(&out, Default(), Format("json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatForPath("/etc/app/config.TOML"))
	assert.Equal(t, FormatYAML, FormatForPath("default.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("noext"))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.config/crudstrategy/default.yaml", DefaultPath())
}

func TestInputSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: 9000\nbackend: sqlite\n"), 0o644))

		src, err := InputSource(path, true)
		require.NoError(t, err)
		port, err := src.Int("port")
		require.NoError(t, err)
		assert.Equal(t, 9000, port)
		backend, err := src.String("backend")
		require.NoError(t, err)
		assert.Equal(t, "sqlite", backend)
	})

	t.Run("toml file", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("address = \"127.0.0.1\"\n"), 0o644))

		src, err := InputSource(path, true)
		require.NoError(t, err)
		address, err := src.String("address")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", address)
	})

	t.Run("missing optional file", func(t *testing.T) {
		src, err := InputSource(filepath.Join(dir, "absent.yaml"), false)
		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("missing required file", func(t *testing.T) {
		_, err := InputSource(filepath.Join(dir, "absent.yaml"), true)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		src, err := InputSource("", true)
		require.NoError(t, err)
		assert.NotNil(t, src)
	})
}
