package stubllm

import (
	"context"
	"encoding/json"
	"sync/atomic"
)

// Client is a deterministic, no-network LLM stub for CI and local end-to-end
// tests. It returns schema-valid JSON so handler + parser code paths are
// exercised without touching the Gemini API, and it counts invocations so
// tests can assert that every request triggers a fresh external call.
type Client struct {
	calls int64

	// Reply overrides the canned healthy reply when set.
	Reply string
	// Err is returned from AnalyzeImage when set.
	Err error
}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

// Calls returns how many times AnalyzeImage has been invoked.
func (c *Client) Calls() int64 { return atomic.LoadInt64(&c.calls) }

func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	atomic.AddInt64(&c.calls, 1)

	if c.Err != nil {
		return "", c.Err
	}
	if c.Reply != "" {
		return c.Reply, nil
	}

	out := map[string]any{
		"planta_saudavel":      true,
		"nome_doenca_praga":    "Nenhuma",
		"descricao":            "A planta parece saudável, sem sinais visíveis de doenças ou pragas.",
		"sugestoes_tratamento": []string{},
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
