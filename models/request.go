package models

type QueryRequest struct {
	Query      string `json:"query" binding:"required"`
	TopK       int    `json:"top_k,omitempty"`
	FileFilter string `json:"file_filter,omitempty"`
}

type ChatRequest struct {
	Message    string `json:"message" binding:"required"`
	TopK       int    `json:"top_k,omitempty"`
	FileFilter string `json:"file_filter,omitempty"`
}
