package services

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer is the one canonical tokenizer used for chunk sizing, token
// windows and reported token counts. Mixing tokenizer implementations
// silently breaks the chunk size invariant, so everything that counts
// tokens goes through this interface.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
	CountTokens(text string) int
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns a Tokenizer backed by the cl100k_base BPE
// encoding, matching the embedding model family.
func NewTiktokenTokenizer() (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load cl100k_base encoding: %w", err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

func (t *tiktokenTokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
