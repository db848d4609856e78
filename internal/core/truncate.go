package core

import (
	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

// Encodings are compiled into the binary; the default loader downloads
// them on first use.
func init() {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
}

// tokenCodec is the part of a tokenizer truncation needs.
type tokenCodec interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// codecForModel resolves the tokenizer of model. Models tiktoken does not
// know (Claude among them) are approximated with cl100k_base.
var codecForModel = func(model string) (tokenCodec, error) {
	if model != "" {
		if tkm, err := tiktoken.EncodingForModel(model); err == nil {
			return tkm, nil
		}
	}
	return tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
}

// truncateChars keeps the first max characters of s.
func truncateChars(s string, max int) (string, bool) {
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// truncateTokens keeps the first max tokens of s.
func truncateTokens(s string, max int, model string) (string, bool, error) {
	codec, err := codecForModel(model)
	if err != nil {
		return "", false, err
	}
	tokens := codec.Encode(s, nil, nil)
	if len(tokens) <= max {
		return s, false, nil
	}
	return codec.Decode(tokens[:max]), true, nil
}
