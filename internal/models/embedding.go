package models

// Page is the text of one page (or sheet, slide, file) extracted from a source document.
type Page struct {
	Source     string
	PageNumber int
	Content    string
}

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Content    string `json:"content"`
	PageNumber int    `json:"page"`
	ChunkID    int    `json:"chunk"`
}

type PromptResponse struct {
	Query   string
	Sources []string
	Content string
}
