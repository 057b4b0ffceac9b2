package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// ChunkingOptions tune the two chunking phases. The structural ceiling is
// in characters and deliberately larger than the token budget: phase one
// aims for coherent boundaries, phase two enforces the size limit.
type ChunkingOptions struct {
	TargetTokens           int
	OverlapTokens          int
	StructuralCeilingChars int
	StructuralOverlapChars int
}

// ChunkingService splits document text into bounded, overlapping chunks.
//
// Phase 1 is a structure-aware recursive split over paragraph, line,
// sentence, word and character boundaries. Phase 2 re-splits any segment
// whose token count still exceeds the target by sliding a token window of
// TargetTokens with stride TargetTokens-OverlapTokens.
type ChunkingService struct {
	opts      ChunkingOptions
	tokenizer Tokenizer
	splitter  textsplitter.RecursiveCharacter
}

func NewChunkingService(tokenizer Tokenizer, opts ChunkingOptions) (*ChunkingService, error) {
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = 400
	}
	if opts.OverlapTokens < 0 {
		opts.OverlapTokens = 50
	}
	if opts.StructuralCeilingChars <= 0 {
		opts.StructuralCeilingChars = 2000
	}
	if opts.StructuralOverlapChars < 0 {
		opts.StructuralOverlapChars = 200
	}
	if opts.OverlapTokens >= opts.TargetTokens {
		return nil, fmt.Errorf("overlap tokens (%d) must be less than target tokens (%d)",
			opts.OverlapTokens, opts.TargetTokens)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.StructuralCeilingChars),
		textsplitter.WithChunkOverlap(opts.StructuralOverlapChars),
		textsplitter.WithSeparators([]string{
			"\n\n", // paragraph breaks
			"\n",   // line breaks
			". ",   // sentences
			" ",    // words
			"",     // characters
		}),
	)

	return &ChunkingService{
		opts:      opts,
		tokenizer: tokenizer,
		splitter:  splitter,
	}, nil
}

// CountTokens reports the token count of text under the canonical tokenizer.
func (s *ChunkingService) CountTokens(text string) int {
	return s.tokenizer.CountTokens(text)
}

// HybridChunk runs both phases and returns the final chunk texts, each at
// or under the token budget.
func (s *ChunkingService) HybridChunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	initialChunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("structural split failed: %w", err)
	}

	var finalChunks []string
	for _, chunk := range initialChunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		tokens := s.tokenizer.Encode(chunk)
		if len(tokens) <= s.opts.TargetTokens {
			finalChunks = append(finalChunks, chunk)
			continue
		}

		stride := s.opts.TargetTokens - s.opts.OverlapTokens
		for i := 0; i < len(tokens); i += stride {
			end := i + s.opts.TargetTokens
			if end > len(tokens) {
				end = len(tokens)
			}
			finalChunks = append(finalChunks, s.tokenizer.Decode(tokens[i:end]))
			if end == len(tokens) {
				break
			}
		}
	}

	log.Printf("CHUNKER: Chunked text into %d chunks from %d initial chunks", len(finalChunks), len(initialChunks))
	return finalChunks, nil
}

// ChunkWithMetadata chunks text and attaches metadata to every chunk.
// ChunkID is sequential from 0 across the whole input. pageNumber <= 0
// means no page attribution. Empty input yields an empty slice.
func (s *ChunkingService) ChunkWithMetadata(text, fileName string, pageNumber int) ([]models.Chunk, error) {
	chunkTexts, err := s.HybridChunk(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(chunkTexts))
	for idx, chunkText := range chunkTexts {
		chunk := models.Chunk{
			ChunkID:    idx,
			FileName:   fileName,
			ChunkText:  chunkText,
			TokenCount: s.tokenizer.CountTokens(chunkText),
		}
		if pageNumber > 0 {
			chunk.PageNumber = pageNumber
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
