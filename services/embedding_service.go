package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// EmbeddingService turns text into fixed-dimension vectors via an
// OpenAI-compatible embeddings endpoint. A batch call is atomic: it either
// returns one vector per input, in input order, or fails as a whole.
type EmbeddingService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewEmbeddingService(client *http.Client, baseURL, apiKey, model string) *EmbeddingService {
	return &EmbeddingService{
		httpClient: client,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// Embed generates an embedding vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for texts, preserving input order:
// result[i] corresponds to texts[i].
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody, err := json.Marshal(models.OpenAIEmbedRequest{
		Input: texts,
		Model: s.model,
	})
	if err != nil {
		return nil, &EmbeddingError{TextCount: len(texts), Err: fmt.Errorf("failed to marshal embeddings request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, &EmbeddingError{TextCount: len(texts), Err: fmt.Errorf("failed to create embeddings request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &EmbeddingError{TextCount: len(texts), Err: fmt.Errorf("failed to call embeddings api: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{
			TextCount: len(texts),
			Err:       fmt.Errorf("embeddings api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var embedResp models.OpenAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, &EmbeddingError{TextCount: len(texts), Err: fmt.Errorf("failed to decode embeddings response: %w", err)}
	}

	if len(embedResp.Data) != len(texts) {
		return nil, &EmbeddingError{
			TextCount: len(texts),
			Err:       fmt.Errorf("embeddings api returned %d vectors for %d texts", len(embedResp.Data), len(texts)),
		}
	}

	// The API reports each vector's input position; order by it rather
	// than trusting response ordering.
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	vectors := make([][]float32, len(embedResp.Data))
	for i, data := range embedResp.Data {
		vectors[i] = data.Embedding
	}

	log.Printf("EMBEDDING: Generated %d embeddings", len(vectors))
	return vectors, nil
}

// EmbedChunks embeds every chunk's text in one batch and attaches the
// vectors back onto the chunks by positional correspondence.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.ChunkText
	}

	vectors, err := s.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return chunks, nil
}
