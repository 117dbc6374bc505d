// Package pipeline implements the translate flow: request validation,
// admission control, prefix handling and backend invocation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"envit5d/internal/langtag"
	"envit5d/pkg/types"
)

// Bounds on the max_length generation parameter.
const (
	MinMaxLength     = 1
	MaxMaxLength     = 512
	DefaultMaxLength = 256
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// Backend is the loaded model runtime the pipeline drives. envit5.Model
// satisfies it; tests substitute stubs.
type Backend interface {
	Generate(ctx context.Context, input string, maxLength int) (string, error)
	Device() string
	ModelName() string
}

// Config encapsulates all tunables for Pipeline construction.
type Config struct {
	Backend       Backend
	MaxQueueDepth int
	MaxWait       time.Duration
	// Timeout bounds a single backend generation; zero disables it.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Pipeline owns request validation and admission over a single backend.
// One generation runs at a time; waiters queue up to MaxQueueDepth.
type Pipeline struct {
	backend Backend
	queueCh chan struct{}
	genCh   chan struct{}
	maxWait time.Duration
	timeout time.Duration
	zlog    *zerolog.Logger
}

// New constructs a Pipeline from Config.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		backend: cfg.Backend,
		genCh:   make(chan struct{}, 1),
		timeout: cfg.Timeout,
		zlog:    cfg.Logger,
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		p.queueCh = make(chan struct{}, defaultMaxQueueDepth)
	} else {
		p.queueCh = make(chan struct{}, cfg.MaxQueueDepth)
	}
	if cfg.MaxWait <= 0 {
		p.maxWait = defaultMaxWait
	} else {
		p.maxWait = cfg.MaxWait
	}
	return p
}

// validate collects all field problems so the client sees them in one pass.
func validate(req types.TranslateRequest) ([]types.FieldError, langtag.Lang, int) {
	var fields []types.FieldError
	if strings.TrimSpace(req.Text) == "" {
		fields = append(fields, types.FieldError{Field: "text", Message: "text must not be empty"})
	}
	lang, err := langtag.Parse(req.SourceLang)
	if err != nil {
		fields = append(fields, types.FieldError{Field: "source_lang", Message: err.Error()})
	}
	maxLen := DefaultMaxLength
	if req.MaxLength != nil {
		if *req.MaxLength < MinMaxLength || *req.MaxLength > MaxMaxLength {
			fields = append(fields, types.FieldError{
				Field:   "max_length",
				Message: fmt.Sprintf("max_length must be between %d and %d", MinMaxLength, MaxMaxLength),
			})
		} else {
			maxLen = *req.MaxLength
		}
	}
	return fields, lang, maxLen
}

// Translate validates req, reserves the in-flight slot and runs one
// generation. Requests that fail validation never reach the backend.
func (p *Pipeline) Translate(ctx context.Context, req types.TranslateRequest) (types.TranslateResponse, error) {
	var resp types.TranslateResponse

	fields, lang, maxLen := validate(req)
	if len(fields) > 0 {
		return resp, ErrValidation(fields...)
	}
	if p.backend == nil {
		return resp, ErrNotReady("model not loaded")
	}

	release, err := p.begin(ctx)
	if err != nil {
		return resp, err
	}
	defer release()

	genCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := p.backend.Generate(genCtx, lang.Prefix()+req.Text, maxLen)
	if err != nil {
		// Our own deadline maps to a timeout; the client going away does not.
		if genCtx.Err() != nil && ctx.Err() == nil {
			return resp, ErrTimeout()
		}
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		return resp, ErrInference(err)
	}
	if p.zlog != nil {
		p.zlog.Debug().
			Str("source_lang", string(lang)).
			Dur("duration", time.Since(start)).
			Int("raw_len", len(raw)).
			Msg("translation complete")
	}

	resp.TranslatedText = langtag.StripPrefix(raw)
	resp.RawOutput = raw
	return resp, nil
}

// Health reports the backend descriptors for GET /health.
func (p *Pipeline) Health() types.HealthResponse {
	if p.backend == nil {
		return types.HealthResponse{Status: "unavailable"}
	}
	return types.HealthResponse{
		Status:    "ok",
		Device:    p.backend.Device(),
		ModelName: p.backend.ModelName(),
	}
}

// Ready reports whether a backend is loaded.
func (p *Pipeline) Ready() bool { return p.backend != nil }

// Languages lists the supported translation directions.
func (p *Pipeline) Languages() types.LanguagesResponse {
	var resp types.LanguagesResponse
	for _, l := range langtag.Supported() {
		resp.Languages = append(resp.Languages, types.LanguageInfo{
			Code:   string(l),
			Name:   l.DisplayName(),
			Target: string(l.Opposite()),
		})
	}
	return resp
}
