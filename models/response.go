package models

type UploadResponse struct {
	Message     string           `json:"message"`
	StorageData *StoredPDF       `json:"storage_data,omitempty"`
	RAGData     *IngestionReport `json:"rag_data,omitempty"`
}

// UploadError records why one file in a multi-upload was rejected.
type UploadError struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

type MultiUploadResponse struct {
	Message           string        `json:"message"`
	SuccessfulUploads []StoredPDF   `json:"successful_uploads"`
	Errors            []UploadError `json:"errors"`
}

type ListPDFsResponse struct {
	Message string      `json:"message"`
	Count   int         `json:"count"`
	Data    []StoredPDF `json:"data"`
}

type DeletePDFResponse struct {
	Message     string        `json:"message"`
	StorageKey  string        `json:"storage_key"`
	IndexResult *DeleteReport `json:"index_result,omitempty"`
}

type ChatResponse struct {
	Answer     string        `json:"answer"`
	SourceDocs []QueryResult `json:"source_docs,omitempty"`
}
