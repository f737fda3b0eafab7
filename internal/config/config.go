// Package config loads DocDeck settings: defaults, then an optional YAML
// file, then environment variables. Command-line flags are applied by the
// caller on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/filestore"
	"github.com/koustreak/docdeck/internal/logger"
	"go.yaml.in/yaml/v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Database Database `yaml:"database"`
	Export   Export   `yaml:"export"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Database holds the optional startup connection and the settings every
// connection is opened with.
type Database struct {
	DefaultURI      string        `yaml:"default_uri"`
	DefaultDB       string        `yaml:"default_db"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// Export configures the object store that receives collection exports.
type Export struct {
	Enabled    bool          `yaml:"enabled"`
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key"`
	SecretKey  string        `yaml:"secret_key"`
	UseSSL     bool          `yaml:"use_ssl"`
	Region     string        `yaml:"region"`
	Bucket     string        `yaml:"bucket"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// Default returns the configuration used when nothing is set: listen on
// :3000, log JSON at info, no startup connection, exports off.
func Default() *Config {
	db := docstore.DefaultConfig("")
	fs := filestore.DefaultConfig("", "", "")
	return &Config{
		Server: Server{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log: Log{Level: "info", Format: "json"},
		Database: Database{
			ConnectTimeout:  db.ConnectTimeout,
			QueryTimeout:    db.QueryTimeout,
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnLifetime: db.MaxConnLifetime,
			MaxConnIdleTime: db.MaxConnIdleTime,
		},
		Export: Export{
			Bucket:     fs.Bucket,
			PresignTTL: fs.PresignTTL,
		},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is empty) and then with the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, errs.Wrapf(errs.ErrKindInvalidInput, err, "invalid config file %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("DOCDECK_ADDR", &c.Server.Addr)
	str("DOCDECK_LOG_LEVEL", &c.Log.Level)
	str("DOCDECK_LOG_FORMAT", &c.Log.Format)
	str("DOCDECK_MONGO_URI", &c.Database.DefaultURI)
	str("DOCDECK_DB", &c.Database.DefaultDB)
	str("DOCDECK_EXPORT_ENDPOINT", &c.Export.Endpoint)
	str("DOCDECK_EXPORT_ACCESS_KEY", &c.Export.AccessKey)
	str("DOCDECK_EXPORT_SECRET_KEY", &c.Export.SecretKey)
	str("DOCDECK_EXPORT_REGION", &c.Export.Region)
	str("DOCDECK_EXPORT_BUCKET", &c.Export.Bucket)

	if origins, ok := lookup("DOCDECK_CORS_ORIGINS"); ok && origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	for key, dst := range map[string]*bool{
		"DOCDECK_EXPORT_ENABLED": &c.Export.Enabled,
		"DOCDECK_EXPORT_USE_SSL": &c.Export.UseSSL,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Wrapf(errs.ErrKindInvalidInput, err, "%s must be a boolean", key)
		}
		*dst = b
	}

	if v, ok := lookup("DOCDECK_QUERY_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "DOCDECK_QUERY_TIMEOUT must be a duration", err)
		}
		c.Database.QueryTimeout = d
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr is required")
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.idle_timeout":      c.Server.IdleTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"database.connect_timeout": c.Database.ConnectTimeout,
		"database.query_timeout":   c.Database.QueryTimeout,
	} {
		if d <= 0 {
			add("%s must be positive, got %s", name, d)
		}
	}
	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 {
		add("database pool sizes must not be negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		add("database.min_conns (%d) exceeds database.max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if !logger.ValidLevel(c.Log.Level) {
		add("log.level %q is not one of debug, info, warn, error, fatal", c.Log.Level)
	}
	if !logger.ValidFormat(c.Log.Format) {
		add("log.format %q is not one of json, console", c.Log.Format)
	}
	if c.Export.Enabled {
		if c.Export.Endpoint == "" {
			add("export.endpoint is required when export is enabled")
		}
		if c.Export.Bucket == "" {
			add("export.bucket is required when export is enabled")
		}
		if c.Export.PresignTTL <= 0 {
			add("export.presign_ttl must be positive")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errs.Wrap(errs.ErrKindInvalidInput, "invalid configuration", errors.Join(problems...))
}

// DocstoreConfig returns the connection settings for uri.
func (c *Config) DocstoreConfig(uri string) *docstore.Config {
	return &docstore.Config{
		URI:             uri,
		Database:        c.Database.DefaultDB,
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		ConnectTimeout:  c.Database.ConnectTimeout,
		QueryTimeout:    c.Database.QueryTimeout,
	}
}

// FilestoreConfig returns the export target settings.
func (c *Config) FilestoreConfig() *filestore.Config {
	return &filestore.Config{
		Provider:   filestore.ProviderMinIO,
		Endpoint:   c.Export.Endpoint,
		AccessKey:  c.Export.AccessKey,
		SecretKey:  c.Export.SecretKey,
		UseSSL:     c.Export.UseSSL,
		Region:     c.Export.Region,
		Bucket:     c.Export.Bucket,
		PresignTTL: c.Export.PresignTTL,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	return cfg
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
