package services

import (
	"context"
	"fmt"
	"log"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// DocumentParser extracts page-segmented text from raw document bytes.
type DocumentParser interface {
	Parse(ctx context.Context, content []byte, fileName string) (*models.ParsedDocument, error)
}

// Chunker splits text into bounded, metadata-carrying chunks.
type Chunker interface {
	ChunkWithMetadata(text, fileName string, pageNumber int) ([]models.Chunk, error)
}

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedChunks(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error)
}

// VectorIndex persists embedded chunks and supports similarity search and
// whole-file deletion.
type VectorIndex interface {
	UpsertChunks(ctx context.Context, chunks []models.Chunk, fileName string) (*models.UpsertReport, error)
	Query(ctx context.Context, vector []float32, topK int, fileFilter string) ([]models.QueryResult, error)
	DeleteByFile(ctx context.Context, fileName string) (*models.DeleteReport, error)
	Count(ctx context.Context) (int, error)
}

// RAGService orchestrates the ingestion and retrieval pipelines. It owns
// references to its collaborators and holds no other state; two documents
// may be ingested concurrently without interference.
type RAGService struct {
	parser   DocumentParser
	chunker  Chunker
	embedder Embedder
	index    VectorIndex
}

func NewRAGService(parser DocumentParser, chunker Chunker, embedder Embedder, index VectorIndex) *RAGService {
	return &RAGService{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// ProcessDocument runs the ingestion pipeline in strict sequence:
// parse -> chunk -> embed -> upsert. The first failing stage aborts the
// rest and is reported wrapped with the stage name.
func (r *RAGService) ProcessDocument(ctx context.Context, content []byte, fileName string) (*models.IngestionReport, error) {
	log.Printf("PIPELINE: Starting RAG pipeline for %s", fileName)

	parsed, err := r.parser.Parse(ctx, content, fileName)
	if err != nil {
		return nil, &PipelineError{Stage: "parse", FileName: fileName, Err: err}
	}

	chunks, err := r.chunker.ChunkWithMetadata(parsed.FullText, fileName, 0)
	if err != nil {
		return nil, &PipelineError{Stage: "chunk", FileName: fileName, Err: err}
	}
	if len(chunks) == 0 {
		return nil, &PipelineError{Stage: "chunk", FileName: fileName, Err: fmt.Errorf("document produced no chunks")}
	}

	maxTokens := 0
	for _, chunk := range chunks {
		if chunk.TokenCount > maxTokens {
			maxTokens = chunk.TokenCount
		}
	}
	log.Printf("PIPELINE: Created %d chunks, max tokens per chunk: %d", len(chunks), maxTokens)

	embedded, err := r.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, &PipelineError{Stage: "embed", FileName: fileName, Err: err}
	}

	upsert, err := r.index.UpsertChunks(ctx, embedded, fileName)
	if err != nil {
		return nil, &PipelineError{Stage: "upsert", FileName: fileName, Err: err}
	}

	log.Printf("PIPELINE: RAG pipeline completed for %s", fileName)

	return &models.IngestionReport{
		FileName:          fileName,
		TotalPages:        parsed.TotalPages,
		CharacterCount:    parsed.CharacterCount,
		TotalChunks:       len(chunks),
		MaxTokensPerChunk: maxTokens,
		IndexName:         upsert.IndexName,
		UpsertedCount:     upsert.UpsertedCount,
	}, nil
}

// Query embeds the query text and returns the ranked matches, optionally
// restricted to one file. An empty result list signals "no relevant
// context" and is for the caller to handle; it is never padded.
func (r *RAGService) Query(ctx context.Context, queryText string, topK int, fileFilter string) (*models.RetrievalResult, error) {
	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := r.index.Query(ctx, vector, topK, fileFilter)
	if err != nil {
		return nil, err
	}

	return &models.RetrievalResult{
		Query:        queryText,
		ResultsCount: len(results),
		Results:      results,
	}, nil
}

// DeleteDocument removes every index entry for fileName.
func (r *RAGService) DeleteDocument(ctx context.Context, fileName string) (*models.DeleteReport, error) {
	return r.index.DeleteByFile(ctx, fileName)
}

// TotalChunks counts all chunks currently in the index.
func (r *RAGService) TotalChunks(ctx context.Context) (int, error) {
	return r.index.Count(ctx)
}
