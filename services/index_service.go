package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

const (
	upsertBatchSize = 100
	deleteBatchSize = 1000
)

// EnsureCollection gets or creates the named collection with cosine
// similarity. Idempotent: safe to call on every process start, and the
// recommended place to call it is main, before traffic.
func EnsureCollection(ctx context.Context, client chromago.Client, collectionName string) (chromago.Collection, error) {
	log.Printf("INDEX: Getting or creating collection '%s'...", collectionName)

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
				chromago.NewStringAttribute("created_by", "rag_service"),
			),
		),
	)
	if err != nil {
		return nil, &IndexError{Op: "ensure collection", Err: err}
	}

	log.Printf("INDEX: Successfully got/created collection '%s'", collectionName)
	return collection, nil
}

// VectorIndexService stores and queries chunk embeddings in a ChromaDB
// collection.
type VectorIndexService struct {
	collection chromago.Collection
	indexName  string
	dimension  int
	// Result cap for the broad query that enumerates a file's entries
	// before deletion. A document with more chunks than this would be
	// deleted incompletely.
	enumerationLimit int
}

func NewVectorIndexService(collection chromago.Collection, indexName string, dimension, enumerationLimit int) *VectorIndexService {
	if enumerationLimit <= 0 {
		enumerationLimit = 10000
	}
	return &VectorIndexService{
		collection:       collection,
		indexName:        indexName,
		dimension:        dimension,
		enumerationLimit: enumerationLimit,
	}
}

// entryID builds a globally unique id for one chunk. The random suffix
// keeps re-ingestions of the same file from colliding with prior entries;
// stale entries are removed only by an explicit DeleteByFile.
func entryID(fileName string, chunkID int) chromago.DocumentID {
	return chromago.DocumentID(fmt.Sprintf("%s_%d_%s", fileName, chunkID, uuid.NewString()[:8]))
}

func chunkMetadata(chunk models.Chunk) chromago.DocumentMetadata {
	attrs := []*chromago.MetaAttribute{
		chromago.NewStringAttribute("file_name", chunk.FileName),
		chromago.NewIntAttribute("chunk_id", int64(chunk.ChunkID)),
		chromago.NewIntAttribute("token_count", int64(chunk.TokenCount)),
	}
	if chunk.PageNumber > 0 {
		attrs = append(attrs, chromago.NewIntAttribute("page_number", int64(chunk.PageNumber)))
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// UpsertChunks uploads embedded chunks in fixed-size batches. A batch
// failure aborts with the failed chunk range; batches already committed
// stay committed.
func (s *VectorIndexService) UpsertChunks(ctx context.Context, chunks []models.Chunk, fileName string) (*models.UpsertReport, error) {
	ids := make([]chromago.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	vectors := make([]embeddings.Embedding, len(chunks))
	metadatas := make([]chromago.DocumentMetadata, len(chunks))

	for i, chunk := range chunks {
		ids[i] = entryID(fileName, chunk.ChunkID)
		texts[i] = chunk.ChunkText
		vectors[i] = embeddings.NewEmbeddingFromFloat32(chunk.Embedding)
		metadatas[i] = chunkMetadata(chunk)
	}

	totalUpserted := 0
	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		err := s.collection.Add(ctx,
			chromago.WithIDs(ids[start:end]...),
			chromago.WithTexts(texts[start:end]...),
			chromago.WithEmbeddings(vectors[start:end]...),
			chromago.WithMetadatas(metadatas[start:end]...),
		)
		if err != nil {
			return nil, &IndexError{Op: "upsert", BatchStart: start, BatchEnd: end, Err: err}
		}
		totalUpserted += end - start
	}

	log.Printf("INDEX: Upserted %d vectors for file: %s", totalUpserted, fileName)

	return &models.UpsertReport{
		TotalChunks:   len(chunks),
		UpsertedCount: totalUpserted,
		IndexName:     s.indexName,
	}, nil
}

// Query returns up to topK entries ordered by descending similarity.
// fileFilter restricts matches to one file by exact metadata match. No
// matches is a successful empty result, not an error.
func (s *VectorIndexService) Query(ctx context.Context, vector []float32, topK int, fileFilter string) ([]models.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}

	opts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
	}
	if fileFilter != "" {
		opts = append(opts, chromago.WithWhereQuery(chromago.EqString("file_name", fileFilter)))
	}

	results, err := s.collection.Query(ctx, opts...)
	if err != nil {
		return nil, &IndexError{Op: "query", Err: err}
	}

	matches := collectMatches(results)
	log.Printf("INDEX: Query returned %d results", len(matches))
	return matches, nil
}

func collectMatches(results chromago.QueryResult) []models.QueryResult {
	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()

	if len(idGroups) == 0 {
		return []models.QueryResult{}
	}

	matches := make([]models.QueryResult, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		metadata := models.ChunkMetadata{}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			metadata = decodeMetadata(metadataGroups[0][i])
		}
		if len(documentGroups) > 0 && i < len(documentGroups[0]) {
			metadata.ChunkText = documentGroups[0][i].ContentString()
		}

		// Chroma reports cosine distance; flip it so higher means more
		// relevant, matching the rest of the pipeline.
		score := 0.0
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			score = 1 - float64(distanceGroups[0][i])
		}

		matches = append(matches, models.QueryResult{
			ID:       string(id),
			Score:    score,
			Metadata: metadata,
		})
	}
	return matches
}

// decodeMetadata converts Chroma's metadata into the typed record. The
// DocumentMetadata type exposes no map accessor, so it round-trips through
// JSON.
func decodeMetadata(metadata chromago.DocumentMetadata) models.ChunkMetadata {
	decoded := models.ChunkMetadata{}
	if metadata == nil {
		return decoded
	}

	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal metadata: %v", err)
		return decoded
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		log.Printf("WARN: could not unmarshal metadata: %v", err)
		return decoded
	}

	if v, ok := raw["file_name"].(string); ok {
		decoded.FileName = v
	}
	if v, ok := raw["chunk_id"].(float64); ok {
		decoded.ChunkID = int(v)
	}
	if v, ok := raw["token_count"].(float64); ok {
		decoded.TokenCount = int(v)
	}
	if v, ok := raw["page_number"].(float64); ok {
		decoded.PageNumber = int(v)
	}
	return decoded
}

// DeleteByFile removes every entry belonging to fileName. The index has no
// native delete-by-filter, so this enumerates ids with a neutral query
// vector and a capped result count, then deletes the ids in batches.
// Finding nothing is success with a zero count.
func (s *VectorIndexService) DeleteByFile(ctx context.Context, fileName string) (*models.DeleteReport, error) {
	neutralVector := make([]float32, s.dimension)

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(neutralVector)),
		chromago.WithNResults(s.enumerationLimit),
		chromago.WithWhereQuery(chromago.EqString("file_name", fileName)),
	)
	if err != nil {
		return nil, &IndexError{Op: "delete enumeration", Err: err}
	}

	idGroups := results.GetIDGroups()
	var ids []chromago.DocumentID
	if len(idGroups) > 0 {
		ids = idGroups[0]
	}

	if len(ids) == 0 {
		log.Printf("INDEX: No vectors found for file: %s", fileName)
		return &models.DeleteReport{FileName: fileName, DeletedCount: 0}, nil
	}

	totalDeleted := 0
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := s.collection.Delete(ctx, chromago.WithIDsDelete(ids[start:end]...)); err != nil {
			return nil, &IndexError{Op: "delete", BatchStart: start, BatchEnd: end, Err: err}
		}
		totalDeleted += end - start
	}

	log.Printf("INDEX: Deleted %d vectors for file: %s", totalDeleted, fileName)
	return &models.DeleteReport{FileName: fileName, DeletedCount: totalDeleted}, nil
}

// Count reports the number of entries in the collection.
func (s *VectorIndexService) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, &IndexError{Op: "count", Err: err}
	}
	return int(count), nil
}
