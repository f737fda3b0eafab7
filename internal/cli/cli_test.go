package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/docdeck/internal/config"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rc := NewRootCommand(&out, &out)
	rc.SetArgs([]string{"version"})

	require.NoError(t, rc.Execute())
	assert.Equal(t, "docdeck dev\n", out.String())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":8080\"\nlog:\n  level: warn\n"), 0o600))

	cmd := newServeCommand(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--log-level", "debug", "--uri", "memory://demo"}))

	var f serveFlags
	f.configPath, _ = cmd.Flags().GetString("config")
	f.logLevel, _ = cmd.Flags().GetString("log-level")
	f.uri, _ = cmd.Flags().GetString("uri")

	cfg, err := loadConfig(f, cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr, "unset flag keeps the file value")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "memory://demo", cfg.Database.DefaultURI)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cmd := newServeCommand(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.Flags().Parse([]string{"--log-format", "xml"}))

	_, err := loadConfig(serveFlags{logFormat: "xml"}, cmd.Flags())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Database.DefaultURI = "memory://demo"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger.Nop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_BadStartupURIIsNotFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Database.DefaultURI = "redis://nowhere"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, cfg, logger.Nop()))
}
