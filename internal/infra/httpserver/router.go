package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appsession "github.com/bryanwahyu/aarogyam/internal/application/session"
	domai "github.com/bryanwahyu/aarogyam/internal/domain/ai"
	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
	"github.com/bryanwahyu/aarogyam/internal/domain/session"
	"github.com/bryanwahyu/aarogyam/internal/domain/speech"
	"github.com/bryanwahyu/aarogyam/internal/middleware"
)

// AudioSource serves clips kept in process memory. Nil when clips live in
// object storage and are reached through presigned URLs instead.
type AudioSource interface {
	Get(key string) (speech.Audio, bool)
}

type Options struct {
	Audio          AudioSource
	LogoPath       string
	MaxUploadBytes int64
	Dependencies   []middleware.Dependency
	Log            *zap.SugaredLogger
}

type Router struct {
	sessions *appsession.Service
	opts     Options
	log      *zap.SugaredLogger
}

func NewRouter(sessions *appsession.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	r := &Router{sessions: sessions, opts: opts, log: opts.Log}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	mux.Get("/", r.wrap(r.handleIndex))
	mux.Get("/logo", r.handleLogo)

	mux.Get("/health", middleware.HealthHandler(opts.Dependencies))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/languages", r.wrap(r.handleLanguages))
		rt.Post("/sessions", r.wrap(r.handleCreateSession))
		rt.Route("/sessions/{id}", func(st chi.Router) {
			st.Get("/", r.wrap(r.handleGetSession))
			st.Post("/image", r.wrap(r.handleUploadImage))
			st.Post("/analyze", r.wrap(r.handleAnalyze))
			st.Post("/translate", r.wrap(r.handleTranslate))
		})
		if opts.Audio != nil {
			rt.Get("/audio/*", r.wrap(r.handleAudio))
		}
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.Is(err, session.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, session.ErrNoImage), errors.Is(err, session.ErrNoAnalysis):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, locale.ErrUnsupportedLanguage), errors.Is(err, middleware.ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.As(err, &tooLarge):
				http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				r.log.Errorw("request failed", "path", req.URL.Path, "requestID", chimw.GetReqID(req.Context()), "error", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/languages
func (r *Router) handleLanguages(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"languages": locale.Languages()})
}

// POST /v1/sessions
// The caller's address (after RealIP) is resolved to a city once, here.
func (r *Router) handleCreateSession(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.sessions.Create(req.Context(), clientIP(req.RemoteAddr))
	if err != nil {
		return err
	}
	middleware.IncrementSessions()
	return writeJSON(w, http.StatusCreated, newSessionView(sess))
}

// GET /v1/sessions/{id}
func (r *Router) handleGetSession(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	sess, err := r.sessions.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, newSessionView(sess))
}

// POST /v1/sessions/{id}/image (multipart, field "image")
func (r *Router) handleUploadImage(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)
	if err := req.ParseMultipartForm(r.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errors.Join(middleware.ErrInvalidInput, err)
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return errors.Join(middleware.ErrInvalidInput, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	contentType, err := middleware.ValidateImageUpload(header.Filename, data)
	if err != nil {
		return err
	}

	sess, err := r.sessions.UploadImage(req.Context(), id, session.Image{
		Data:        data,
		ContentType: contentType,
		Filename:    middleware.SanitizeString(header.Filename),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, newSessionView(sess))
}

// POST /v1/sessions/{id}/analyze
// Always 200 once an image is present: model, geocoding and speech failures
// are part of the returned state.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	sess, err := r.sessions.Analyze(req.Context(), id)
	if err != nil {
		return err
	}

	middleware.RecordAnalysis(sess.Analysis != nil && sess.Analysis.Failed)
	if sess.Hospital != nil && (sess.Announcement == nil || sess.Announcement.AudioURL == "") {
		middleware.IncrementSpeechFailed()
	}
	return writeJSON(w, http.StatusOK, newSessionView(sess))
}

// POST /v1/sessions/{id}/translate
// Body: {"language": "Tamil"}
func (r *Router) handleTranslate(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	var body struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(middleware.ErrInvalidInput, err)
	}

	sess, res, err := r.sessions.Translate(req.Context(), id, middleware.SanitizeString(body.Language))
	if err != nil {
		return err
	}
	middleware.RecordTranslation(res.Failed)

	return writeJSON(w, http.StatusOK, map[string]any{
		"session":     newSessionView(sess),
		"translation": res,
	})
}

// GET /v1/audio/sessions/{sessionID}/{clip}.mp3
func (r *Router) handleAudio(w http.ResponseWriter, req *http.Request) error {
	key := chi.URLParam(req, "*")
	if err := middleware.ValidateAudioKey(key); err != nil {
		return err
	}
	audio, ok := r.opts.Audio.Get(key)
	if !ok {
		http.NotFound(w, req)
		return nil
	}
	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	_, err := w.Write(audio.Data)
	return err
}

// GET /logo
func (r *Router) handleLogo(w http.ResponseWriter, req *http.Request) {
	if !r.logoAvailable() {
		http.NotFound(w, req)
		return
	}
	http.ServeFile(w, req, r.opts.LogoPath)
}

func (r *Router) logoAvailable() bool {
	if r.opts.LogoPath == "" {
		return false
	}
	fi, err := os.Stat(r.opts.LogoPath)
	return err == nil && !fi.IsDir()
}

func sessionID(req *http.Request) (session.ID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return "", err
	}
	return session.ID(id), nil
}

// clientIP strips the port RemoteAddr carries when RealIP found no header.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(remoteAddr)
}
