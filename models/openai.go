package models

// OpenAIEmbedRequest is the request body for the OpenAI embeddings API.
// Input holds one or more texts; the response preserves their order.
type OpenAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// OpenAIEmbedData is one embedding in an API response, with its position
// in the input batch.
type OpenAIEmbedData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// OpenAIEmbedResponse is used to parse the embeddings from the API response.
type OpenAIEmbedResponse struct {
	Data []OpenAIEmbedData `json:"data"`
}
