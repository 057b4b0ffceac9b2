package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// Retriever produces grounding context for a chat message.
type Retriever interface {
	Query(ctx context.Context, queryText string, topK int, fileFilter string) (*models.RetrievalResult, error)
}

// ChatService answers single-turn questions grounded in retrieved document
// chunks. It keeps no conversation state.
type ChatService struct {
	retriever    Retriever
	geminiClient *genai.Client
	model        string
}

func NewChatService(retriever Retriever, geminiClient *genai.Client, model string) *ChatService {
	return &ChatService{
		retriever:    retriever,
		geminiClient: geminiClient,
		model:        model,
	}
}

// ChatWithDocuments retrieves context for the message, builds a grounded
// system prompt and asks the model for an answer. An empty retrieval is
// not an error: the prompt tells the model no documents matched.
func (c *ChatService) ChatWithDocuments(ctx context.Context, message string, topK int, fileFilter string) (*models.ChatResponse, error) {
	retrieval, err := c.retriever.Query(ctx, message, topK, fileFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	systemPrompt := buildSystemPrompt(retrieval.Results)

	result, err := c.geminiClient.Models.GenerateContent(ctx, c.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: promptContent(systemPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini api call failed: %w", err)
	}

	answer := result.Text()
	if answer == "" {
		answer = "I'm sorry, I couldn't generate a response."
	}

	log.Printf("CHAT: Answered with %d source chunks", len(retrieval.Results))

	return &models.ChatResponse{
		Answer:     answer,
		SourceDocs: retrieval.Results,
	}, nil
}

func promptContent(prompt string) *genai.Content {
	contents := genai.Text(prompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}

// buildSystemPrompt formats retrieved chunks into the grounding
// instructions for the model.
func buildSystemPrompt(results []models.QueryResult) string {
	var contextText string
	if len(results) == 0 {
		contextText = "No relevant documents found in the knowledge base."
	} else {
		contextParts := make([]string, 0, len(results))
		for _, result := range results {
			part := result.Metadata.ChunkText
			if result.Metadata.FileName != "" {
				part = fmt.Sprintf("[Source: %s]\n%s", result.Metadata.FileName, part)
			}
			contextParts = append(contextParts, part)
		}
		contextText = strings.Join(contextParts, "\n\n")
	}

	return fmt.Sprintf(`You are a helpful assistant that answers questions about the user's uploaded documents.

Follow these rules:
1. Answer questions based ONLY on the provided context below.
2. If the context doesn't contain relevant information, politely say you don't have that information in the documents.
3. Never make up or infer information that isn't in the provided context.
4. Provide direct, natural answers without mentioning document numbers or labels.

CONTEXT:
%s`, contextText)
}
