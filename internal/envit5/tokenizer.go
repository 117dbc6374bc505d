package envit5

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// textTokenizer wraps the HuggingFace tokenizer loaded from tokenizer.json.
type textTokenizer struct {
	tk *tokenizer.Tokenizer
}

func loadTokenizer(path string) (*textTokenizer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer: %w", err)
	}
	tk, err := pretrained.FromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parsing tokenizer: %w", err)
	}
	return &textTokenizer{tk: tk}, nil
}

// encode tokenizes text with special tokens added and returns int64 ids as
// the ONNX graphs expect them.
func (t *textTokenizer) encode(text string) ([]int64, error) {
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("encoding input: %w", err)
	}
	ids := make([]int64, len(enc.Ids))
	for i, id := range enc.Ids {
		ids[i] = int64(id)
	}
	return ids, nil
}

// decode turns generated ids back into text, dropping special tokens.
func (t *textTokenizer) decode(ids []int64) string {
	ints := make([]int, len(ids))
	for i, id := range ids {
		ints[i] = int(id)
	}
	return t.tk.Decode(ints, true)
}
