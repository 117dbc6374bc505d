package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"envit5d/pkg/types"
)

// stubBackend counts calls and replays a canned result.
type stubBackend struct {
	mu      sync.Mutex
	calls   int
	lastIn  string
	lastMax int

	out   string
	err   error
	delay time.Duration
}

func (s *stubBackend) Generate(ctx context.Context, input string, maxLength int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastIn = input
	s.lastMax = maxLength
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func (s *stubBackend) Device() string    { return "cpu" }
func (s *stubBackend) ModelName() string { return "stub-model" }

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func intPtr(v int) *int { return &v }

func TestTranslatePrefixesInputAndStripsOutput(t *testing.T) {
	stub := &stubBackend{out: "en: Hello"}
	p := New(Config{Backend: stub})

	resp, err := p.Translate(context.Background(), types.TranslateRequest{Text: "Xin chào", SourceLang: "vi"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if stub.lastIn != "vi: Xin chào" {
		t.Fatalf("backend input = %q, want prefixed text", stub.lastIn)
	}
	if resp.RawOutput != "en: Hello" {
		t.Fatalf("raw output = %q", resp.RawOutput)
	}
	if resp.TranslatedText != "Hello" {
		t.Fatalf("translated text = %q, want prefix stripped", resp.TranslatedText)
	}
}

func TestTranslateEnglishTargetsVietnamese(t *testing.T) {
	stub := &stubBackend{out: "vi: Xin chào"}
	p := New(Config{Backend: stub})

	resp, err := p.Translate(context.Background(), types.TranslateRequest{Text: "Hello", SourceLang: "en"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.HasPrefix(stub.lastIn, "en: ") {
		t.Fatalf("backend input = %q, want en: prefix", stub.lastIn)
	}
	if resp.TranslatedText != "Xin chào" {
		t.Fatalf("translated text = %q", resp.TranslatedText)
	}
}

func TestTranslateKeepsRawWhitespace(t *testing.T) {
	stub := &stubBackend{out: "en: ok"}
	p := New(Config{Backend: stub})

	if _, err := p.Translate(context.Background(), types.TranslateRequest{Text: "  spaced  ", SourceLang: "vi"}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	// Validation trims only for the emptiness check; the model sees the raw text.
	if stub.lastIn != "vi:   spaced  " {
		t.Fatalf("backend input = %q", stub.lastIn)
	}
}

func TestTranslateUnprefixedOutputUnchanged(t *testing.T) {
	stub := &stubBackend{out: "no prefix here"}
	p := New(Config{Backend: stub})

	resp, err := p.Translate(context.Background(), types.TranslateRequest{Text: "Hello", SourceLang: "en"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if resp.TranslatedText != resp.RawOutput || resp.TranslatedText != "no prefix here" {
		t.Fatalf("unprefixed output altered: %+v", resp)
	}
}

func TestTranslateEmptyTextSkipsBackend(t *testing.T) {
	stub := &stubBackend{out: "en: x"}
	p := New(Config{Backend: stub})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "", SourceLang: "vi"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.callCount() != 0 {
		t.Fatalf("backend called %d times for invalid request", stub.callCount())
	}
	details := ValidationDetails(err)
	if len(details) != 1 || details[0].Field != "text" {
		t.Fatalf("details = %+v", details)
	}
}

func TestTranslateWhitespaceTextRejected(t *testing.T) {
	stub := &stubBackend{}
	p := New(Config{Backend: stub})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "   \n\t", SourceLang: "en"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.callCount() != 0 {
		t.Fatalf("backend called for whitespace-only text")
	}
}

func TestTranslateUnsupportedLang(t *testing.T) {
	stub := &stubBackend{}
	p := New(Config{Backend: stub})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "bonjour", SourceLang: "fr"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := ValidationDetails(err)
	if len(details) != 1 || details[0].Field != "source_lang" {
		t.Fatalf("details = %+v", details)
	}
	if stub.callCount() != 0 {
		t.Fatalf("backend called for unsupported language")
	}
}

func TestTranslateCollectsAllFieldErrors(t *testing.T) {
	p := New(Config{Backend: &stubBackend{}})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: " ", SourceLang: "xx", MaxLength: intPtr(0)})
	details := ValidationDetails(err)
	if len(details) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", details)
	}
}

func TestTranslateMaxLengthBounds(t *testing.T) {
	for _, v := range []int{0, -1, 513} {
		stub := &stubBackend{}
		p := New(Config{Backend: stub})
		_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "en", MaxLength: intPtr(v)})
		if !IsValidation(err) {
			t.Fatalf("max_length %d: expected validation error, got %v", v, err)
		}
		if stub.callCount() != 0 {
			t.Fatalf("max_length %d: backend called", v)
		}
	}
}

func TestTranslateMaxLengthPassedThrough(t *testing.T) {
	stub := &stubBackend{out: "vi: ok"}
	p := New(Config{Backend: stub})

	if _, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "en", MaxLength: intPtr(32)}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if stub.lastMax != 32 {
		t.Fatalf("maxLength = %d, want 32", stub.lastMax)
	}
}

func TestTranslateDefaultMaxLength(t *testing.T) {
	stub := &stubBackend{out: "vi: ok"}
	p := New(Config{Backend: stub})

	if _, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "en"}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if stub.lastMax != DefaultMaxLength {
		t.Fatalf("maxLength = %d, want %d", stub.lastMax, DefaultMaxLength)
	}
}

func TestTranslateNilBackend(t *testing.T) {
	p := New(Config{})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "en"})
	if !IsNotReady(err) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}

func TestTranslateInferenceError(t *testing.T) {
	cause := errors.New("session exploded")
	stub := &stubBackend{err: cause}
	p := New(Config{Backend: stub})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "en"})
	if !IsInference(err) {
		t.Fatalf("expected inference error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("inference error does not wrap cause: %v", err)
	}
}

func TestTranslateTimeout(t *testing.T) {
	stub := &stubBackend{out: "en: slow", delay: 200 * time.Millisecond}
	p := New(Config{Backend: stub, Timeout: 20 * time.Millisecond})

	_, err := p.Translate(context.Background(), types.TranslateRequest{Text: "hi", SourceLang: "vi"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestTranslateClientCancel(t *testing.T) {
	stub := &stubBackend{out: "en: slow", delay: 200 * time.Millisecond}
	p := New(Config{Backend: stub, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := p.Translate(ctx, types.TranslateRequest{Text: "hi", SourceLang: "vi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsTimeout(err) {
		t.Fatalf("client cancel misreported as timeout")
	}
}

func TestHealthReportsBackend(t *testing.T) {
	p := New(Config{Backend: &stubBackend{}})
	h := p.Health()
	if h.Status != "ok" || h.Device != "cpu" || h.ModelName != "stub-model" {
		t.Fatalf("health = %+v", h)
	}
	if !p.Ready() {
		t.Fatalf("Ready() = false with backend set")
	}
}

func TestHealthWithoutBackend(t *testing.T) {
	p := New(Config{})
	if h := p.Health(); h.Status != "unavailable" {
		t.Fatalf("health = %+v", h)
	}
	if p.Ready() {
		t.Fatalf("Ready() = true without backend")
	}
}

func TestLanguages(t *testing.T) {
	p := New(Config{Backend: &stubBackend{}})
	resp := p.Languages()
	if len(resp.Languages) != 2 {
		t.Fatalf("languages = %+v", resp.Languages)
	}
	if resp.Languages[0].Code != "en" || resp.Languages[0].Target != "vi" {
		t.Fatalf("en entry = %+v", resp.Languages[0])
	}
	if resp.Languages[1].Code != "vi" || resp.Languages[1].Name != "Vietnamese" {
		t.Fatalf("vi entry = %+v", resp.Languages[1])
	}
}

func TestErrorPredicatesDisjoint(t *testing.T) {
	errs := []error{
		ErrValidation(types.FieldError{Field: "text", Message: "x"}),
		ErrNotReady("x"),
		ErrTooBusy(),
		ErrTimeout(),
		ErrInference(errors.New("x")),
	}
	preds := []func(error) bool{IsValidation, IsNotReady, IsTooBusy, IsTimeout, IsInference}
	for i, err := range errs {
		for j, pred := range preds {
			if got := pred(err); got != (i == j) {
				t.Fatalf("predicate %d on error %d = %v", j, i, got)
			}
		}
	}
}
