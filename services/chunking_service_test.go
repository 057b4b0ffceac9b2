package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer treats each whitespace-separated word as one token. It
// keeps chunking tests independent of the BPE vocabulary.
type wordTokenizer struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (t *wordTokenizer) Encode(text string) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, word := range fields {
		id, ok := t.ids[word]
		if !ok {
			id = len(t.words)
			t.ids[word] = id
			t.words = append(t.words, word)
		}
		tokens[i] = id
	}
	return tokens
}

func (t *wordTokenizer) Decode(tokens []int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = t.words[id]
	}
	return strings.Join(words, " ")
}

func (t *wordTokenizer) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func newTestChunker(t *testing.T, target, overlap int) (*ChunkingService, *wordTokenizer) {
	t.Helper()
	tokenizer := newWordTokenizer()
	chunker, err := NewChunkingService(tokenizer, ChunkingOptions{
		TargetTokens:  target,
		OverlapTokens: overlap,
		// High ceiling keeps the structural phase from splitting, so the
		// token window phase is exercised in isolation.
		StructuralCeilingChars: 100000,
		StructuralOverlapChars: 0,
	})
	require.NoError(t, err)
	return chunker, tokenizer
}

func wordsText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkWithMetadataEmptyInput(t *testing.T) {
	chunker, _ := newTestChunker(t, 20, 5)

	chunks, err := chunker.ChunkWithMetadata("", "doc.pdf", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = chunker.ChunkWithMetadata("   \n\n  ", "doc.pdf", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkWithMetadataTokenBudgetInvariant(t *testing.T) {
	chunker, _ := newTestChunker(t, 20, 5)

	chunks, err := chunker.ChunkWithMetadata(wordsText(173), "doc.pdf", 0)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, 20,
			"chunk %d exceeds token budget", chunk.ChunkID)
	}
}

func TestChunkWithMetadataSequentialIDsAndMetadata(t *testing.T) {
	chunker, _ := newTestChunker(t, 20, 5)

	chunks, err := chunker.ChunkWithMetadata(wordsText(100), "report.pdf", 3)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkID)
		assert.Equal(t, "report.pdf", chunk.FileName)
		assert.Equal(t, 3, chunk.PageNumber)
		assert.Equal(t, chunker.CountTokens(chunk.ChunkText), chunk.TokenCount)
	}
}

func TestSlidingWindowOverlapInvariant(t *testing.T) {
	const target, overlap = 20, 5
	chunker, tokenizer := newTestChunker(t, target, overlap)

	chunks, err := chunker.ChunkWithMetadata(wordsText(173), "doc.pdf", 0)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "input must exceed one window")

	for i := 1; i < len(chunks); i++ {
		prev := tokenizer.Encode(chunks[i-1].ChunkText)
		curr := tokenizer.Encode(chunks[i].ChunkText)
		require.GreaterOrEqual(t, len(prev), overlap)

		assert.Equal(t, prev[len(prev)-overlap:], curr[:overlap],
			"window %d should begin with the trailing %d tokens of window %d", i, overlap, i-1)
	}
}

func TestSlidingWindowCoverage(t *testing.T) {
	const target, overlap = 20, 5
	chunker, tokenizer := newTestChunker(t, target, overlap)

	original := wordsText(173)
	chunks, err := chunker.ChunkWithMetadata(original, "doc.pdf", 0)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Stitch the windows back together, dropping each window's leading
	// overlap, and compare against the original token sequence.
	var reconstructed []int
	for i, chunk := range chunks {
		tokens := tokenizer.Encode(chunk.ChunkText)
		if i > 0 {
			tokens = tokens[overlap:]
		}
		reconstructed = append(reconstructed, tokens...)
	}

	assert.Equal(t, tokenizer.Encode(original), reconstructed)
}

func TestStructuralSplitPrefersParagraphBoundaries(t *testing.T) {
	tokenizer := newWordTokenizer()
	chunker, err := NewChunkingService(tokenizer, ChunkingOptions{
		TargetTokens:           400,
		OverlapTokens:          50,
		StructuralCeilingChars: 60,
		StructuralOverlapChars: 0,
	})
	require.NoError(t, err)

	text := "alpha bravo charlie delta echo foxtrot golf hotel\n\nindia juliet kilo lima mike november oscar papa"
	chunks, err := chunker.ChunkWithMetadata(text, "doc.pdf", 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].ChunkText, "alpha")
	assert.NotContains(t, chunks[0].ChunkText, "india")
	assert.Contains(t, chunks[1].ChunkText, "india")
}

func TestNewChunkingServiceRejectsOverlapAtOrAboveTarget(t *testing.T) {
	_, err := NewChunkingService(newWordTokenizer(), ChunkingOptions{
		TargetTokens:  100,
		OverlapTokens: 100,
	})
	assert.Error(t, err)
}
