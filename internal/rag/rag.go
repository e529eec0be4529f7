package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"medicalbot/internal/helper"
	"medicalbot/internal/llmservice"
	"medicalbot/internal/models"
)

// Input is one chain invocation. Question is what the model answers; Query,
// when set, replaces it as the similarity-search text.
type Input struct {
	Question string
	Query    string
}

func (in Input) retrievalQuery() string {
	if in.Query != "" {
		return in.Query
	}
	return in.Question
}

// Invoker runs a retrieve-then-generate pass.
type Invoker interface {
	Invoke(ctx context.Context, in Input) (*models.PromptResponse, error)
}

// RAG retrieves passages for a query and asks the chat model to answer with
// them in the system prompt.
type RAG struct {
	retriever    schema.Retriever
	llm          llms.Model
	callOptions  []llms.CallOption
	systemPrompt string
}

var _ Invoker = (*RAG)(nil)

func NewRAG(retriever schema.Retriever, llm llms.Model, callOptions ...llms.CallOption) *RAG {
	return &RAG{
		retriever:    retriever,
		llm:          llm,
		callOptions:  callOptions,
		systemPrompt: models.SystemPromptTemplate,
	}
}

// NewFromStore wraps store as a top-k similarity retriever.
func NewFromStore(store vectorstores.VectorStore, topK int, llm llms.Model, callOptions ...llms.CallOption) *RAG {
	return NewRAG(vectorstores.ToRetriever(store, topK), llm, callOptions...)
}

func (r *RAG) Invoke(ctx context.Context, in Input) (*models.PromptResponse, error) {
	docs, err := r.retriever.GetRelevantDocuments(ctx, in.retrievalQuery())
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	log.Debug().Int("documents", len(docs)).Msg("Retrieved context")

	messages := BuildMessages(r.systemPrompt, docs, in.Question)
	answer, err := llmservice.GenerateContent(ctx, r.llm, messages, r.callOptions...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &models.PromptResponse{
		Query:   in.Question,
		Sources: Sources(docs),
		Content: answer,
	}, nil
}

// BuildMessages stuffs the retrieved passages into the system prompt and
// sends the question as the human turn.
func BuildMessages(systemPrompt string, docs []schema.Document, question string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(systemPrompt, StuffDocuments(docs))),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}
}

// StuffDocuments joins passage texts with a blank line between them.
func StuffDocuments(docs []schema.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.PageContent
	}
	return strings.Join(parts, models.ContextSeparator)
}

// Sources lists "file p.N" for each passage, without duplicates.
func Sources(docs []schema.Document) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range docs {
		src := helper.MetaString(d.Metadata, models.MetaSource)
		if src == "" {
			continue
		}
		if page := helper.MetaInt(d.Metadata, models.MetaPage); page > 0 {
			src = fmt.Sprintf("%s p.%d", src, page)
		}
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}
