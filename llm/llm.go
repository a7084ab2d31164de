package llm

import "context"

// Client abstracts the multimodal model provider used by the analyzer.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// AnalyzeImage takes raw image bytes plus their MIME type and returns a
	// single JSON string per the diagnosis schema.
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
	// SourceName returns a short provider label for logs and metrics (e.g., "Gemini").
	SourceName() string
}
