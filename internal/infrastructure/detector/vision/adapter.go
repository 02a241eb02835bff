package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/prompts"

	jsoniter "github.com/json-iterator/go"
	"github.com/sashabaranov/go-openai"
)

var _ output.DetectorPort = (*Detector)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Detector asks a vision-capable chat model to list the elements of a capture.
type Detector struct {
	client *openai.Client
	model  string
	hint   string
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Hint    string
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"contentLength", req.ContentLength,
	)

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewDetector(cfg Config) *Detector {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &Detector{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		hint:   cfg.Hint,
		logger: cfg.Logger,
	}
}

func (d *Detector) Detect(ctx context.Context, capture *entity.Capture) ([]entity.Element, error) {
	if capture == nil || len(capture.Data) == 0 {
		return nil, fmt.Errorf("%w: empty capture", entity.ErrPerceptionUnavailable)
	}

	prompt, err := prompts.GenerateDetectPrompt(prompts.DetectElementsPrompt, prompts.NewDetectPromptData(capture, d.hint))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI(capture),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	elements, err := ParseElements(resp.Choices[0].Message.Content, capture)
	if err != nil {
		return nil, err
	}
	if d.logger != nil {
		d.logger.Debug("Vision detection finished", "model", d.model, "elements", len(elements))
	}
	return elements, nil
}

func dataURI(capture *entity.Capture) string {
	format := capture.Format
	if format == "" {
		format = "jpeg"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(capture.Data)
}

type wireElement struct {
	Type         string    `json:"type"`
	BBox         []float64 `json:"bbox"`
	Confidence   float64   `json:"confidence"`
	Label        string    `json:"label"`
	Interactable *bool     `json:"interactable"`
}

// ParseElements decodes the JSON array embedded in a model reply. Text
// around the array and code fences are ignored. Entries with a malformed
// box are skipped.
func ParseElements(content string, capture *entity.Capture) ([]entity.Element, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no element array in model reply")
	}

	var raw []wireElement
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}

	elements := make([]entity.Element, 0, len(raw))
	for i, w := range raw {
		if len(w.BBox) != 4 || w.BBox[2] <= w.BBox[0] || w.BBox[3] <= w.BBox[1] {
			continue
		}
		typ, _ := entity.ParseElementType(w.Type)
		interactable := typ == entity.ElementButton || typ == entity.ElementIcon ||
			typ == entity.ElementInput || typ == entity.ElementLink
		if w.Interactable != nil {
			interactable = *w.Interactable
		}

		elements = append(elements, entity.Element{
			ID:           fmt.Sprintf("vision_%d", i),
			Type:         typ,
			Box:          capture.ToSurface(entity.BBox{X1: w.BBox[0], Y1: w.BBox[1], X2: w.BBox[2], Y2: w.BBox[3]}),
			Confidence:   clamp01(w.Confidence),
			Label:        strings.TrimSpace(w.Label),
			Interactable: interactable,
		})
	}
	return elements, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
