package parser

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"medicalbot/internal/helper"
	"medicalbot/internal/models"
)

// Split cuts pages into overlapping chunks with the recursive character
// splitter. Each chunk keeps its source and page and gets a 1-based chunk
// index within the page plus a stable id.
func Split(pages []models.Page, chunkSize, chunkOverlap int) ([]schema.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var docs []schema.Document
	for _, p := range pages {
		parts, err := splitter.SplitText(p.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", p.Source, p.PageNumber, err)
		}
		for i, part := range parts {
			docs = append(docs, schema.Document{
				PageContent: part,
				Metadata: map[string]any{
					"id":              helper.ChunkUUID(p.Source, p.PageNumber, i+1),
					models.MetaSource: p.Source,
					models.MetaPage:   p.PageNumber,
					models.MetaChunk:  i + 1,
				},
			})
		}
	}
	return docs, nil
}

// Chunks flattens split documents for display.
func Chunks(docs []schema.Document) []models.Chunk {
	out := make([]models.Chunk, len(docs))
	for i, d := range docs {
		out[i] = models.Chunk{
			ID:         helper.DocumentID(d.Metadata),
			Source:     helper.MetaString(d.Metadata, models.MetaSource),
			Content:    d.PageContent,
			PageNumber: helper.MetaInt(d.Metadata, models.MetaPage),
			ChunkID:    helper.MetaInt(d.Metadata, models.MetaChunk),
		}
	}
	return out
}
