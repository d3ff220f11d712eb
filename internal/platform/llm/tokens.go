package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encMu    sync.Mutex
	encCache = map[string]*tiktoken.Tiktoken{}
	encMiss  = map[string]bool{}
)

// EstimateTokens counts tokens with the model's tiktoken encoding, falling back to cl100k_base and then
// to a four-characters-per-token heuristic when no encoding can be loaded.
func EstimateTokens(model string, text string) int {
	if text == "" {
		return 0
	}
	if enc := encodingFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	n := len([]rune(text)) / 4
	if n == 0 {
		n = 1
	}
	return n
}

func encodingFor(model string) *tiktoken.Tiktoken {
	encMu.Lock()
	defer encMu.Unlock()
	if enc, ok := encCache[model]; ok {
		return enc
	}
	if encMiss[model] {
		return nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		encMiss[model] = true
		return nil
	}
	encCache[model] = enc
	return enc
}
