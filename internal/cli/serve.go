package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koustreak/docdeck/internal/config"
	"github.com/koustreak/docdeck/internal/console"
	"github.com/koustreak/docdeck/internal/docstore/dial"
	"github.com/koustreak/docdeck/internal/filestore"
	"github.com/koustreak/docdeck/internal/filestore/minio"
	"github.com/koustreak/docdeck/internal/logger"
	"github.com/koustreak/docdeck/internal/server"
	"github.com/koustreak/docdeck/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type serveFlags struct {
	configPath string
	addr       string
	logLevel   string
	logFormat  string
	uri        string
	db         string
}

func newServeCommand(stdout, stderr io.Writer) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the DocDeck web console.",
		Long: `docdeck serve starts the HTTP server with the API and the web
console. Settings come from the config file, then DOCDECK_* environment
variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f, cmd.Flags())
			if err != nil {
				return err
			}

			logCfg := cfg.LoggerConfig()
			logCfg.Output = stdout
			log := logger.New(logCfg)
			logger.SetGlobal(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", os.Getenv("DOCDECK_CONFIG"), "YAML configuration file.")
	flags.StringVar(&f.addr, "addr", "", "Address to listen on, e.g. :3000.")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format: json or console.")
	flags.StringVar(&f.uri, "uri", "", "Connection string to open at startup.")
	flags.StringVar(&f.db, "db", "", "Default database for the startup connection.")
	return cmd
}

// loadConfig reads the file and environment, then applies the flags that
// were set on the command line.
func loadConfig(f serveFlags, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	for name, apply := range map[string]func(){
		"addr":       func() { cfg.Server.Addr = f.addr },
		"log-level":  func() { cfg.Log.Level = f.logLevel },
		"log-format": func() { cfg.Log.Format = f.logFormat },
		"uri":        func() { cfg.Database.DefaultURI = f.uri },
		"db":         func() { cfg.Database.DefaultDB = f.db },
	} {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs until ctx is cancelled, then stops the HTTP server before
// closing the live database connection.
func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	manager := session.NewManager(dial.Open, cfg.DocstoreConfig(""), log)

	opts := console.Options{
		QueryTimeout: cfg.Database.QueryTimeout,
		Bucket:       cfg.Export.Bucket,
		PresignTTL:   cfg.Export.PresignTTL,
		Logger:       log,
	}
	if cfg.Export.Enabled {
		exports, err := openExports(ctx, cfg.FilestoreConfig(), cfg.Database.ConnectTimeout)
		if err != nil {
			return err
		}
		defer exports.Close()
		opts.Exports = exports
		log.InfoWith("exports enabled", logger.Fields{
			"endpoint": cfg.Export.Endpoint,
			"bucket":   cfg.Export.Bucket,
		})
	}
	svc := console.New(manager, opts)

	if uri := cfg.Database.DefaultURI; uri != "" {
		if _, err := svc.Connect(ctx, uri, cfg.Database.DefaultDB); err != nil {
			log.WarnWith("startup connection failed", err, logger.Fields{
				"uri": session.Redact(uri),
			})
		}
	}

	srv := server.New(svc, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Logger:       log,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	var runErr error
	select {
	case runErr = <-errc:
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWith("http shutdown failed", err, nil)
	}
	if err := manager.Close(shutdownCtx); err != nil {
		log.ErrorWith("closing database connection failed", err, nil)
	}
	return runErr
}

func openExports(ctx context.Context, cfg *filestore.Config, timeout time.Duration) (filestore.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return minio.New(ctx, cfg)
}
