package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"envit5d/internal/pipeline"
	"envit5d/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Translate(ctx context.Context, req types.TranslateRequest) (types.TranslateResponse, error)
	Health() types.HealthResponse
	Languages() types.LanguagesResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Post("/translate", handleTranslate(svc))
	r.Get("/health", handleHealth(svc))
	r.Get("/languages", handleLanguages(svc))

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Swagger UI (only with -tags=swagger)
	MountSwagger(r)

	return r
}

// handleTranslate runs one translation request through the pipeline.
//
//	@Summary		Translate text between English and Vietnamese
//	@Description	Prefixes the input with its source language, runs the model and returns the translation with the task prefix stripped, plus the raw model output.
//	@Tags			translate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.TranslateRequest	true	"translation request"
//	@Success		200		{object}	types.TranslateResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		415		{object}	types.ErrorResponse
//	@Failure		422		{object}	types.ErrorResponse
//	@Failure		429		{object}	types.ErrorResponse
//	@Failure		500		{object}	types.ErrorResponse
//	@Failure		503		{object}	types.ErrorResponse
//	@Failure		504		{object}	types.ErrorResponse
//	@Router			/translate [post]
func handleTranslate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.TranslateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies land here too; keep the message generic.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("path", r.URL.Path).Str("source_lang", req.SourceLang)
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("translate start")
			} else {
				log.Printf("translate start path=%s source_lang=%s", r.URL.Path, req.SourceLang)
			}
		}

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Translate(joinedCtx, req)
		if err != nil {
			// If context was canceled (client disconnect or shutdown), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeTranslateError(w, err)
			IncrementTranslation(sourceLangLabel(req.SourceLang), itoa(status))
			if lvl >= LevelInfo {
				logTranslateEnd(r, status, start, err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		IncrementTranslation(sourceLangLabel(req.SourceLang), "200")
		if lvl >= LevelInfo {
			logTranslateEnd(r, http.StatusOK, start, nil)
		}
	}
}

// writeTranslateError maps pipeline errors to status codes and writes the
// JSON error body. Backend failures stay generic toward the client; the
// cause goes to the log.
func writeTranslateError(w http.ResponseWriter, err error) int {
	switch {
	case pipeline.IsValidation(err):
		writeJSONErrorDetails(w, http.StatusUnprocessableEntity, "request validation failed", pipeline.ValidationDetails(err))
		return http.StatusUnprocessableEntity
	case pipeline.IsNotReady(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return http.StatusServiceUnavailable
	case pipeline.IsTooBusy(err):
		IncrementBackpressure("queue_full")
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
		return http.StatusTooManyRequests
	case pipeline.IsTimeout(err):
		writeJSONError(w, http.StatusGatewayTimeout, err.Error())
		return http.StatusGatewayTimeout
	}
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), he.Error())
		return he.StatusCode()
	}
	if zlog != nil {
		zlog.Error().Err(err).Msg("translation failed")
	} else {
		log.Printf("translation failed: %v", err)
	}
	writeJSONError(w, http.StatusInternalServerError, "translation failed")
	return http.StatusInternalServerError
}

func logTranslateEnd(r *http.Request, status int, start time.Time, err error) {
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("translate end")
		return
	}
	if err != nil {
		log.Printf("translate end status=%d dur=%s err=%v", status, time.Since(start), err)
		return
	}
	log.Printf("translate end status=%d dur=%s", status, time.Since(start))
}

// handleHealth reports service readiness and model descriptors.
//
//	@Summary	Service health and model descriptors
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Router		/health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Health()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}

// handleLanguages lists the supported translation directions.
//
//	@Summary	Supported languages
//	@Tags		translate
//	@Produce	json
//	@Success	200	{object}	types.LanguagesResponse
//	@Router		/languages [get]
func handleLanguages(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Languages()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}
