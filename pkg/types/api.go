package types

// TranslateRequest represents a translation request payload.
type TranslateRequest struct {
	// Required text to translate.
	// example: How are you today?
	Text string `json:"text" example:"How are you today?"`
	// Source language of the text: "en" or "vi". The target is the opposite language.
	// example: en
	SourceLang string `json:"source_lang" example:"en"`
	// Maximum output length in tokens, 1..512. Omitted or null means 256.
	// example: 256
	MaxLength *int `json:"max_length,omitempty" example:"256"`
}

// TranslateResponse is returned by POST /translate.
type TranslateResponse struct {
	// Translation with the leading language prefix stripped and whitespace trimmed.
	// example: Hôm nay bạn thế nào?
	TranslatedText string `json:"translated_text" example:"Hôm nay bạn thế nào?"`
	// Unmodified model output, typically prefixed with the target language tag.
	// example: vi: Hôm nay bạn thế nào?
	RawOutput string `json:"raw_output" example:"vi: Hôm nay bạn thế nào?"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Always "ok" while the server is able to answer.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Execution device the model runs on: "cpu" or "cuda".
	// example: cpu
	Device string `json:"device" example:"cpu"`
	// Identifier of the loaded model.
	// example: VietAI/envit5-translation
	ModelName string `json:"model_name" example:"VietAI/envit5-translation"`
}

// LanguageInfo describes one supported source language and its translation target.
type LanguageInfo struct {
	// ISO 639-1 code accepted in TranslateRequest.SourceLang.
	// example: en
	Code string `json:"code" example:"en"`
	// Human-readable language name.
	// example: English
	Name string `json:"name" example:"English"`
	// Language the text will be translated into.
	// example: vi
	Target string `json:"target" example:"vi"`
}

// LanguagesResponse wraps the language list returned by GET /languages.
type LanguagesResponse struct {
	// Supported source languages.
	Languages []LanguageInfo `json:"languages"`
}

// FieldError points a validation failure at a specific request field.
type FieldError struct {
	// JSON field name that failed validation.
	// example: max_length
	Field string `json:"field" example:"max_length"`
	// Why the field was rejected.
	// example: must be between 1 and 512
	Message string `json:"message" example:"must be between 1 and 512"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Per-field validation details, present only for 422 responses.
	Details []FieldError `json:"details,omitempty"`
}
