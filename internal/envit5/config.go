package envit5

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// modelParams holds the token ids and sizes generation needs, collected from
// the model's config.json and (when present) generation_config.json.
type modelParams struct {
	ModelType           string
	VocabSize           int
	EOSTokenID          int64
	PadTokenID          int64
	DecoderStartTokenID int64
	MaxLength           int
}

// rawModelConfig mirrors the fields of a HuggingFace config.json we care
// about. Token id fields vary in shape across exports, hence the any types.
type rawModelConfig struct {
	ModelType           string `json:"model_type"`
	VocabSize           int    `json:"vocab_size"`
	EOSTokenID          any    `json:"eos_token_id"` // int or []int
	PadTokenID          any    `json:"pad_token_id"` // int or null
	DecoderStartTokenID *int64 `json:"decoder_start_token_id"`

	MaxPositionEmbeddings int `json:"max_position_embeddings"`
	MaxLength             int `json:"max_length"`
}

// rawGenerationConfig mirrors generation_config.json.
type rawGenerationConfig struct {
	MaxLength           int   `json:"max_length"`
	EOSTokenID          any   `json:"eos_token_id"`
	PadTokenID          any   `json:"pad_token_id"`
	DecoderStartTokenID int64 `json:"decoder_start_token_id"`
}

// loadModelParams reads config.json (required) and generation_config.json
// (optional) from the model directory.
func loadModelParams(dir string) (modelParams, error) {
	var p modelParams

	b, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return p, fmt.Errorf("reading config.json: %w", err)
	}
	var raw rawModelConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		return p, fmt.Errorf("parsing config.json: %w", err)
	}

	var gen *rawGenerationConfig
	if gb, err := os.ReadFile(filepath.Join(dir, "generation_config.json")); err == nil {
		var g rawGenerationConfig
		if err := json.Unmarshal(gb, &g); err == nil {
			gen = &g
		}
	}

	eos := tokenIDFrom(raw.EOSTokenID, -1)
	if gen != nil {
		eos = tokenIDFrom(gen.EOSTokenID, eos)
	}
	if eos < 0 {
		return p, fmt.Errorf("config.json: missing eos_token_id")
	}

	// pad_token_id may be null; the common fallback is the EOS id.
	pad := tokenIDFrom(raw.PadTokenID, eos)
	if gen != nil {
		pad = tokenIDFrom(gen.PadTokenID, pad)
	}

	// T5-family models start decoding from the pad token unless the config
	// says otherwise.
	start := pad
	if raw.DecoderStartTokenID != nil {
		start = *raw.DecoderStartTokenID
	}
	if gen != nil && gen.DecoderStartTokenID != 0 {
		start = gen.DecoderStartTokenID
	}

	maxLen := firstNonZero(raw.MaxLength, raw.MaxPositionEmbeddings, 512)
	if gen != nil && gen.MaxLength > 0 {
		maxLen = gen.MaxLength
	}

	p = modelParams{
		ModelType:           raw.ModelType,
		VocabSize:           raw.VocabSize,
		EOSTokenID:          eos,
		PadTokenID:          pad,
		DecoderStartTokenID: start,
		MaxLength:           maxLen,
	}
	return p, nil
}

// tokenIDFrom extracts a token id that JSON may encode as a number, the first
// element of an array, or null (in which case def is returned).
func tokenIDFrom(v any, def int64) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case []any:
		if len(t) > 0 {
			if f, ok := t[0].(float64); ok {
				return int64(f)
			}
		}
	}
	return def
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
