package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"envit5d/internal/config"
	"envit5d/internal/envit5"
	"envit5d/internal/httpapi"
	"envit5d/internal/pipeline"
)

type serveFlags struct {
	cfgPath        string
	addr           string
	modelDir       string
	modelName      string
	device         string
	beams          int
	maxQueueDepth  int
	maxWaitSeconds int
	timeoutSeconds int
	maxBodyBytes   int64
	ortLib         string
	logLevel       string
	logJSON        bool
	corsOrigins    string
}

// buildServeCmd is a convenience for root command wiring.
func buildServeCmd() *cobra.Command { cmd, _ := newServeCmd(); return cmd }

// newServeCmd constructs the serve command. Flag defaults come from
// ENVIT5D_* environment variables where set.
func newServeCmd() (*cobra.Command, *serveFlags) {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model and serve the translation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *sf)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&sf.cfgPath, "config", envStr("ENVIT5D_CONFIG", ""), "Config file (.yaml, .json or .toml); explicit flags override it")
	fl.StringVar(&sf.addr, "addr", envStr("ENVIT5D_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fl.StringVar(&sf.modelDir, "model-dir", envStr("ENVIT5D_MODEL_DIR", "~/models/envit5-translation"), "Directory holding the ONNX export, tokenizer.json and config.json")
	fl.StringVar(&sf.modelName, "model-name", envStr("ENVIT5D_MODEL_NAME", ""), "Model name reported on /health (default "+envit5.DefaultModelName+")")
	fl.StringVar(&sf.device, "device", envStr("ENVIT5D_DEVICE", "auto"), "Inference device: auto, cpu or cuda")
	fl.IntVar(&sf.beams, "beams", envInt("ENVIT5D_BEAMS", envit5.DefaultBeamWidth), "Beam width used for generation")
	fl.IntVar(&sf.maxQueueDepth, "max-queue-depth", envInt("ENVIT5D_MAX_QUEUE_DEPTH", 0), "Requests allowed to wait for the generation slot (0=default)")
	fl.IntVar(&sf.maxWaitSeconds, "max-wait-seconds", envInt("ENVIT5D_MAX_WAIT_SECONDS", 0), "Seconds a request may wait before 429 (0=default)")
	fl.IntVar(&sf.timeoutSeconds, "timeout-seconds", envInt("ENVIT5D_TIMEOUT_SECONDS", 0), "Generation timeout per request in seconds (0=disabled)")
	fl.Int64Var(&sf.maxBodyBytes, "max-body-bytes", envInt64("ENVIT5D_MAX_BODY_BYTES", 0), "Request body size limit in bytes (0=default 1 MiB)")
	fl.StringVar(&sf.ortLib, "ort-lib", envStr("ENVIT5D_ORT_LIB", ""), "Path to the onnxruntime shared library (empty=system default)")
	fl.StringVar(&sf.logLevel, "log-level", envStr("ENVIT5D_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	fl.BoolVar(&sf.logJSON, "log-json", envBool("ENVIT5D_LOG_JSON", false), "Emit JSON logs instead of console output")
	fl.StringVar(&sf.corsOrigins, "cors-origins", envStr("ENVIT5D_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins (empty disables CORS)")
	return cmd, sf
}

// resolveConfig merges flag values with the optional config file.
// Explicit flags win over file values; file values win over flag defaults.
func resolveConfig(cmd *cobra.Command, sf serveFlags) (config.Config, error) {
	cfg := config.Config{
		Addr:           sf.addr,
		ModelDir:       sf.modelDir,
		ModelName:      sf.modelName,
		Device:         sf.device,
		Beams:          sf.beams,
		MaxQueueDepth:  sf.maxQueueDepth,
		MaxWaitSeconds: sf.maxWaitSeconds,
		TimeoutSeconds: sf.timeoutSeconds,
		MaxBodyBytes:   sf.maxBodyBytes,
		ORTLib:         sf.ortLib,
		LogLevel:       sf.logLevel,
		LogJSON:        sf.logJSON,
		CORSOrigins:    splitCSV(sf.corsOrigins),
	}
	if sf.cfgPath == "" {
		return cfg, nil
	}
	fileCfg, err := config.Load(sf.cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	fl := cmd.Flags()
	if !fl.Changed("addr") && fileCfg.Addr != "" {
		cfg.Addr = fileCfg.Addr
	}
	if !fl.Changed("model-dir") && fileCfg.ModelDir != "" {
		cfg.ModelDir = fileCfg.ModelDir
	}
	if !fl.Changed("model-name") && fileCfg.ModelName != "" {
		cfg.ModelName = fileCfg.ModelName
	}
	if !fl.Changed("device") && fileCfg.Device != "" {
		cfg.Device = fileCfg.Device
	}
	if !fl.Changed("beams") && fileCfg.Beams != 0 {
		cfg.Beams = fileCfg.Beams
	}
	if !fl.Changed("max-queue-depth") && fileCfg.MaxQueueDepth != 0 {
		cfg.MaxQueueDepth = fileCfg.MaxQueueDepth
	}
	if !fl.Changed("max-wait-seconds") && fileCfg.MaxWaitSeconds != 0 {
		cfg.MaxWaitSeconds = fileCfg.MaxWaitSeconds
	}
	if !fl.Changed("timeout-seconds") && fileCfg.TimeoutSeconds != 0 {
		cfg.TimeoutSeconds = fileCfg.TimeoutSeconds
	}
	if !fl.Changed("max-body-bytes") && fileCfg.MaxBodyBytes != 0 {
		cfg.MaxBodyBytes = fileCfg.MaxBodyBytes
	}
	if !fl.Changed("ort-lib") && fileCfg.ORTLib != "" {
		cfg.ORTLib = fileCfg.ORTLib
	}
	if !fl.Changed("log-level") && fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if !fl.Changed("log-json") && fileCfg.LogJSON {
		cfg.LogJSON = true
	}
	if !fl.Changed("cors-origins") && len(fileCfg.CORSOrigins) > 0 {
		cfg.CORSOrigins = fileCfg.CORSOrigins
	}
	return cfg, nil
}

func newLogger(level string, jsonOut bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if !jsonOut {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func runServe(cmd *cobra.Command, sf serveFlags) error {
	cfg, err := resolveConfig(cmd, sf)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogJSON)
	httpapi.SetLogger(logger)

	// The model loads once here; any failure aborts startup.
	model, err := envit5.Load(envit5.Config{
		ModelDir:   cfg.ModelDir,
		ModelName:  cfg.ModelName,
		Device:     cfg.Device,
		BeamWidth:  cfg.Beams,
		ORTLibPath: cfg.ORTLib,
		Logger:     &logger,
	})
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	defer func() {
		if err := model.Close(); err != nil {
			logger.Error().Err(err).Msg("closing model")
		}
	}()

	svc := pipeline.New(pipeline.Config{
		Backend:       model,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitSeconds) * time.Second,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:        &logger,
	})

	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, nil, nil)
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("model", model.ModelName()).
			Str("device", model.Device()).
			Msg("envit5d listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	// Cancel in-flight generations first so the listener can drain.
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	return nil
}
