package models

import "time"

// ExtractedPage is one page's worth of plain text. PageNumber is 1-based.
type ExtractedPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// ParsedDocument is the result of extracting text from an uploaded PDF.
// FullText is the page texts joined by a blank line, in page order; pages
// with no extractable text are absent from Pages but still counted in
// TotalPages.
type ParsedDocument struct {
	FileName       string          `json:"file_name"`
	TotalPages     int             `json:"total_pages"`
	Pages          []ExtractedPage `json:"pages"`
	FullText       string          `json:"full_text"`
	CharacterCount int             `json:"character_count"`
}

// Chunk is a bounded span of a document's text. ChunkID is sequential
// within a document starting at 0. Embedding is attached by the embedding
// service and is never persisted as metadata.
type Chunk struct {
	ChunkID    int       `json:"chunk_id"`
	FileName   string    `json:"file_name"`
	ChunkText  string    `json:"chunk_text"`
	TokenCount int       `json:"token_count"`
	PageNumber int       `json:"page_number,omitempty"`
	Embedding  []float32 `json:"-"`
}

// ChunkMetadata is the typed metadata record stored alongside each vector
// in the index and returned with query matches.
type ChunkMetadata struct {
	FileName   string `json:"file_name"`
	ChunkID    int    `json:"chunk_id"`
	ChunkText  string `json:"chunk_text"`
	TokenCount int    `json:"token_count"`
	PageNumber int    `json:"page_number,omitempty"`
}

// QueryResult is a single index match, score descending across a result
// set (higher = more relevant).
type QueryResult struct {
	ID       string        `json:"id"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

// UpsertReport summarises a batched upsert of one document's chunks.
type UpsertReport struct {
	TotalChunks   int    `json:"total_chunks"`
	UpsertedCount int    `json:"upserted_count"`
	IndexName     string `json:"index_name"`
}

// DeleteReport summarises a delete-by-file. DeletedCount of zero is a
// successful no-op, not an error.
type DeleteReport struct {
	FileName     string `json:"file_name"`
	DeletedCount int    `json:"deleted_count"`
}

// IngestionReport is returned by the full ingestion pipeline.
type IngestionReport struct {
	FileName          string `json:"file_name"`
	TotalPages        int    `json:"total_pages"`
	CharacterCount    int    `json:"character_count"`
	TotalChunks       int    `json:"total_chunks"`
	MaxTokensPerChunk int    `json:"max_tokens_per_chunk"`
	IndexName         string `json:"index_name"`
	UpsertedCount     int    `json:"upserted_count"`
}

// RetrievalResult carries ranked matches for a query along with the
// original query text for traceability. An empty Results slice is the
// expected signal for "no relevant context".
type RetrievalResult struct {
	Query        string        `json:"query"`
	ResultsCount int           `json:"results_count"`
	Results      []QueryResult `json:"results"`
}

// StoredPDF describes one raw PDF held by the document store.
type StoredPDF struct {
	StorageKey   string    `json:"storage_key"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	LastModified time.Time `json:"last_modified"`
}
