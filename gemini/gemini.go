package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const promptDiagnosis = `
You are a plant pathology assistant. Analyze this image of a plant and follow these instructions STRICTLY:

1. Determine whether the plant looks healthy or shows signs of a disease or pest.
2. If a disease or pest is identified:
   a. Give its COMMON NAME.
   b. Describe it BRIEFLY, focusing on the symptoms visible in the image and their likely causes.
   c. Give DETAILED AND PRACTICAL treatment suggestions. Be specific in each one: types of products that can be used (e.g. copper-based fungicides, insecticidal soap, neem oil), cultural management techniques (e.g. crop rotation, sanitary pruning, irrigation/drainage adjustment, removal of infected material), preventive actions, and when applicable the frequency or ideal timing of each application.
3. If the plant looks healthy, state that clearly, set "nome_doenca_praga" to "Nenhuma", and set "sugestoes_tratamento" to an empty list or a single general-maintenance note.
4. If the image is not clear enough, is not of a plant, or you cannot make a reliable assessment, explain that in "descricao", set "nome_doenca_praga" to "Não identificado", and set "sugestoes_tratamento" to an empty list.

YOUR REPLY MUST BE A SINGLE VALID JSON OBJECT AND NOTHING ELSE.
Do not include any explanatory text, introductions, or any character before the opening '{' or after the closing '}'.
The REQUIRED JSON format is:
{
  "planta_saudavel": true (boolean, true if healthy, false otherwise),
  "nome_doenca_praga": "string with the disease/pest name" (use "Nenhuma" if healthy, "Não identificado" if it cannot be determined),
  "descricao": "string with a detailed description of the condition, symptoms, causes, or the reason no assessment was possible.",
  "sugestoes_tratamento": ["list of strings, where EACH STRING is one distinct, detailed, practical treatment or management action."]
}
"planta_saudavel" MUST be a literal boolean (true or false, no quotes).
"sugestoes_tratamento" MUST be a list of strings.
`

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type geminiRequest struct {
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
	Contents         []content        `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent REST API. The API key is only ever
// placed in the request URL, never in error messages.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com",
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(apiKey, model, baseURL string, timeout time.Duration) *Client {
	c := NewClient(apiKey, model, timeout)
	c.baseURL = baseURL
	return c
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// AnalyzeImage sends the fixed diagnosis instruction plus the image to Gemini
// and returns the reply text, which should be a JSON string.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	parts := []part{{Text: promptDiagnosis}}
	if len(imageData) > 0 {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}

	reqBody := geminiRequest{
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
		Contents: []content{
			{
				Role:  "user",
				Parts: parts,
			},
		},
	}

	return c.generateContent(ctx, reqBody)
}

func (c *Client) generateContent(ctx context.Context, body geminiRequest) (string, error) {
	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey),
		fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequestWithContext(ctx, "POST", ep, bytes.NewBuffer(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			// url.Error would echo the full request URL, key included.
			if ue, ok := err.(*url.Error); ok {
				err = ue.Err
			}
			lastErr = fmt.Errorf("failed to send request to %s model %s: %w", c.SourceName(), c.model, err)
			continue
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
			// retry next endpoint if available
			continue
		}
		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		// find first text part
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("no text part in response")
	}
	return "", lastErr
}
