package services

import "fmt"

// ExtractionError reports a malformed or unreadable document. Fatal for
// that document; never retried.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError reports a failed embedding provider call. The batch never
// partially succeeds; TextCount is how many texts were attempted.
type EmbeddingError struct {
	TextCount int
	Err       error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for %d text(s): %v", e.TextCount, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError reports a vector index failure. For batched upserts,
// BatchStart/BatchEnd name the half-open chunk range of the failed batch;
// earlier batches remain committed.
type IndexError struct {
	Op         string
	BatchStart int
	BatchEnd   int
	Err        error
}

func (e *IndexError) Error() string {
	if e.BatchEnd > e.BatchStart {
		return fmt.Sprintf("index %s failed for batch [%d:%d): %v", e.Op, e.BatchStart, e.BatchEnd, e.Err)
	}
	return fmt.Sprintf("index %s failed: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// PipelineError wraps a stage failure from the ingestion pipeline.
type PipelineError struct {
	Stage    string
	FileName string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q failed for %s: %v", e.Stage, e.FileName, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
