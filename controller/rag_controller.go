package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// RAGPipeline is the ingestion/retrieval surface the handlers drive.
type RAGPipeline interface {
	ProcessDocument(ctx context.Context, content []byte, fileName string) (*models.IngestionReport, error)
	Query(ctx context.Context, queryText string, topK int, fileFilter string) (*models.RetrievalResult, error)
	DeleteDocument(ctx context.Context, fileName string) (*models.DeleteReport, error)
}

// DocumentStore holds the raw uploaded PDFs.
type DocumentStore interface {
	SavePDF(content []byte, fileName string) (*models.StoredPDF, error)
	ListPDFs() ([]models.StoredPDF, error)
	OpenPDF(key string) ([]byte, error)
	DeletePDF(key string) error
}

// Chatter generates grounded answers from retrieved context.
type Chatter interface {
	ChatWithDocuments(ctx context.Context, message string, topK int, fileFilter string) (*models.ChatResponse, error)
}

// RAGController handles the HTTP requests for the document QA API. All
// business logic lives in the injected services.
type RAGController struct {
	rag   RAGPipeline
	store DocumentStore
	chat  Chatter
}

func NewRAGController(rag RAGPipeline, store DocumentStore, chat Chatter) *RAGController {
	return &RAGController{rag: rag, store: store, chat: chat}
}

func validatePDFUpload(fileName, contentType string) error {
	if contentType != "application/pdf" {
		return fmt.Errorf("only PDF files are allowed")
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return fmt.Errorf("file must have .pdf extension")
	}
	return nil
}

// UploadPDF handles POST /api/pdfs/upload: stores the raw file and runs
// the RAG pipeline keyed by the storage key.
func (c *RAGController) UploadPDF(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file in request: " + err.Error()})
		return
	}

	if err := validatePDFUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	stored, err := c.store.SavePDF(content, fileHeader.Filename)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store PDF"})
		return
	}

	// The storage key is the document identifier throughout the index, so
	// re-uploads of the same file name stay distinct.
	report, err := c.rag.ProcessDocument(ctx.Request.Context(), content, stored.StorageKey)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process PDF through RAG pipeline"})
		return
	}

	ctx.JSON(http.StatusCreated, models.UploadResponse{
		Message:     "PDF uploaded and processed successfully",
		StorageData: stored,
		RAGData:     report,
	})
}

// UploadMultiplePDFs handles POST /api/pdfs/upload-multiple: stores each
// valid file, collecting per-file errors instead of failing the request.
func (c *RAGController) UploadMultiplePDFs(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	var uploaded []models.StoredPDF
	var errors []models.UploadError

	for _, fileHeader := range files {
		if err := validatePDFUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")); err != nil {
			errors = append(errors, models.UploadError{FileName: fileHeader.Filename, Error: err.Error()})
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			errors = append(errors, models.UploadError{FileName: fileHeader.Filename, Error: err.Error()})
			continue
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			errors = append(errors, models.UploadError{FileName: fileHeader.Filename, Error: err.Error()})
			continue
		}

		stored, err := c.store.SavePDF(content, fileHeader.Filename)
		if err != nil {
			errors = append(errors, models.UploadError{FileName: fileHeader.Filename, Error: err.Error()})
			continue
		}
		uploaded = append(uploaded, *stored)
	}

	ctx.JSON(http.StatusCreated, models.MultiUploadResponse{
		Message:           fmt.Sprintf("Uploaded %d of %d files", len(uploaded), len(files)),
		SuccessfulUploads: uploaded,
		Errors:            errors,
	})
}

// ListPDFs handles GET /api/pdfs.
func (c *RAGController) ListPDFs(ctx *gin.Context) {
	pdfs, err := c.store.ListPDFs()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve PDFs"})
		return
	}

	ctx.JSON(http.StatusOK, models.ListPDFsResponse{
		Message: "PDFs retrieved successfully",
		Count:   len(pdfs),
		Data:    pdfs,
	})
}

// DeletePDF handles DELETE /api/pdfs/*key: removes the stored file and
// cascades to every index entry derived from it.
func (c *RAGController) DeletePDF(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Storage key is required"})
		return
	}

	if err := c.store.DeletePDF(key); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete PDF from storage"})
		return
	}

	report, err := c.rag.DeleteDocument(ctx.Request.Context(), key)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete PDF vectors from index"})
		return
	}

	ctx.JSON(http.StatusOK, models.DeletePDFResponse{
		Message:     "PDF deleted successfully",
		StorageKey:  key,
		IndexResult: report,
	})
}

// ViewPDF handles GET /api/pdfs/view/*key: streams the raw PDF inline.
func (c *RAGController) ViewPDF(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Storage key is required"})
		return
	}

	content, err := c.store.OpenPDF(key)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "PDF not found"})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", filepath.Base(key)))
	ctx.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	ctx.Data(http.StatusOK, "application/pdf", content)
}

// QueryRAG handles POST /api/rag/query: retrieval only, no answer
// generation. An empty result list is returned as-is.
func (c *RAGController) QueryRAG(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := c.rag.Query(ctx.Request.Context(), req.Query, req.TopK, req.FileFilter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query documents"})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Chat handles POST /api/chat: a single-turn grounded answer.
func (c *RAGController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.chat.ChatWithDocuments(ctx.Request.Context(), req.Message, req.TopK, req.FileFilter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate AI response"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
