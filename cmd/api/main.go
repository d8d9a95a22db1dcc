package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/aarogyam/internal/application"
	appai "github.com/bryanwahyu/aarogyam/internal/application/ai"
	apphospital "github.com/bryanwahyu/aarogyam/internal/application/hospital"
	applocation "github.com/bryanwahyu/aarogyam/internal/application/location"
	appsession "github.com/bryanwahyu/aarogyam/internal/application/session"
	appspeech "github.com/bryanwahyu/aarogyam/internal/application/speech"
	apptranslation "github.com/bryanwahyu/aarogyam/internal/application/translation"
	"github.com/bryanwahyu/aarogyam/internal/config"
	"github.com/bryanwahyu/aarogyam/internal/domain/speech"
	"github.com/bryanwahyu/aarogyam/internal/domain/translation"
	aiopenai "github.com/bryanwahyu/aarogyam/internal/infra/ai/openai"
	"github.com/bryanwahyu/aarogyam/internal/infra/ai/prompt"
	"github.com/bryanwahyu/aarogyam/internal/infra/db/memory"
	"github.com/bryanwahyu/aarogyam/internal/infra/geo/ipinfo"
	"github.com/bryanwahyu/aarogyam/internal/infra/geo/nominatim"
	"github.com/bryanwahyu/aarogyam/internal/infra/httpserver"
	"github.com/bryanwahyu/aarogyam/internal/infra/speech/gtts"
	speechopenai "github.com/bryanwahyu/aarogyam/internal/infra/speech/openai"
	"github.com/bryanwahyu/aarogyam/internal/infra/storage"
	"github.com/bryanwahyu/aarogyam/internal/infra/translate/cloud"
	"github.com/bryanwahyu/aarogyam/internal/infra/translate/gtx"
	translateopenai "github.com/bryanwahyu/aarogyam/internal/infra/translate/openai"
	"github.com/bryanwahyu/aarogyam/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "API Key not found! Please set the OPENAI_API_KEY environment variable.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init artifact store: minio kalau di-enable, kalau tidak simpan di memory
	var (
		artifacts speech.ArtifactStore
		audio     httpserver.AudioSource
		deps      []middleware.Dependency
	)
	if cfg.Minio.Enabled {
		store, err := storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
			cfg.Minio.URLExpiry,
		)
		if err != nil {
			log.Fatalw("minio init error", "endpoint", cfg.Minio.Endpoint, "error", err)
		}
		artifacts = store
		deps = append(deps, middleware.Dependency{Name: "storage", Checker: store})
	} else {
		mem := storage.NewMemory("/v1/audio/")
		artifacts = mem
		audio = mem
		deps = append(deps, middleware.Dependency{Name: "storage", Checker: mem})
	}

	// init analysis client
	aiClient := aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	aiClient.MaxTokens = cfg.AI.MaxTokens
	aiClient.AttachImage = cfg.AI.AttachImage
	aiClient.Structured = cfg.AI.StructuredHeadline

	synth, err := newSynthesizer(cfg)
	if err != nil {
		log.Fatalw("speech init error", "provider", cfg.Speech.Provider, "error", err)
	}

	translator, closeTranslator, err := newTranslator(ctx, cfg)
	if err != nil {
		log.Fatalw("translator init error", "provider", cfg.Translate.Provider, "error", err)
	}
	defer closeTranslator()

	geocoder := nominatim.New(cfg.Geo.NominatimURL, cfg.Geo.UserAgent, cfg.Timeouts.Geocoding)
	// hospital lookup degrades to a note when nominatim is down, so it is optional
	deps = append(deps, middleware.Dependency{
		Name:     "geocoder",
		Checker:  middleware.HealthCheckFunc(geocoder.Status),
		Optional: true,
	})

	// init service
	svc := &appsession.Service{
		Repo:       memory.NewSessionRepository(),
		Locations:  applocation.NewService(ipinfo.New(cfg.Geo.IPInfoURL, cfg.Geo.IPInfoToken, cfg.Timeouts.Geolocation), cfg.Timeouts.Geolocation, log),
		Analyzer:   appai.NewService(aiClient, prompt.GetUserPrompt(), cfg.Timeouts.Analysis, log),
		Hospitals:  apphospital.NewService(geocoder, cfg.Hospital.Name, cfg.Hospital.Phone, cfg.Timeouts.Geocoding, log),
		Announcer:  appspeech.NewAnnouncer(synth, artifacts, cfg.Speech.Lang, cfg.Timeouts.Speech, log),
		Translator: apptranslation.NewService(translator, cfg.Timeouts.Translation, log),
		Clock:      application.SystemClock{},
		TTL:        cfg.Session.TTL,
		Log:        log,
	}
	go svc.RunSweeper(ctx, sweepInterval(cfg.Session.TTL))

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		Audio:          audio,
		LogoPath:       cfg.Assets.LogoPath,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Dependencies:   deps,
		Log:            log,
	})

	// analyze chains model, geocoding and speech calls, each with its own deadline
	writeTimeout := cfg.Timeouts.Analysis + cfg.Timeouts.Geocoding + cfg.Timeouts.Speech + 15*time.Second

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Infow("server listening", "addr", addr, "model", cfg.AI.Model, "speech", cfg.Speech.Provider, "translate", cfg.Translate.Provider, "minio", cfg.Minio.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")
	cancel()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorw("shutdown error", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func newSynthesizer(cfg *config.Config) (speech.Synthesizer, error) {
	switch cfg.Speech.Provider {
	case "gtts":
		return gtts.New(cfg.Speech.GTTSURL, cfg.Timeouts.Speech), nil
	case "openai":
		return speechopenai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.Speech.Voice), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}
}

func newTranslator(ctx context.Context, cfg *config.Config) (translation.Translator, func(), error) {
	noop := func() {}
	switch cfg.Translate.Provider {
	case "gtx":
		return gtx.New(cfg.Translate.GTXURL, cfg.Timeouts.Translation), noop, nil
	case "cloud":
		c, err := cloud.New(ctx, cfg.Translate.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return c, func() { _ = c.Close() }, nil
	case "openai":
		return translateopenai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.Translate.Model), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown translate provider %q", cfg.Translate.Provider)
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	return every
}
