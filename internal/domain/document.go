package domain

import "time"

// Chunk metadata keys used by ingestion and fingerprinting.
const (
	MetaSource   = "source"
	MetaFilePath = "file_path"
	MetaRowID    = "row_id"
	MetaSession  = "session_id"
)

// Chunk is an immutable unit of extracted text plus its metadata.
// Metadata carries at minimum a source identifier and optionally a row
// identifier; both feed the ingestion fingerprint.
type Chunk struct {
	// ID is assigned by the index manager (the chunk's fingerprint) before the
	// chunk reaches a vector store. Empty until then.
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Meta returns the metadata value for key, or "" when absent.
func (c Chunk) Meta(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

// DocumentKind classifies how a document entered the portal.
type DocumentKind string

const (
	DocumentKindAnalysis   DocumentKind = "analysis"
	DocumentKindComparison DocumentKind = "comparison"
	DocumentKindIngestion  DocumentKind = "ingestion"
)

// Document is a registry record for an uploaded file.
type Document struct {
	ID        string
	SessionID string
	Filename  string
	Kind      DocumentKind
	SizeBytes int64
	SHA256    string
	CreatedAt time.Time
}

// DocumentAnalysis is the structured result the LLM produces for a single
// document.
type DocumentAnalysis struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Language      string   `json:"language"`
	DocumentType  string   `json:"document_type"`
	Summary       []string `json:"summary"`
	KeyTopics     []string `json:"key_topics"`
	SentimentTone string   `json:"sentiment_tone"`
}

// ComparisonRow is one page-wise difference between the reference and the
// actual document.
type ComparisonRow struct {
	Page    string `json:"page"`
	Changes string `json:"changes"`
}
