package omniparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var _ output.DetectorPort = (*Client)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultBaseURL = "http://localhost:5001"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// Client talks to an OmniParser detection server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  output.LoggerPort
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (h Health) Ready() bool {
	return h.Status == "healthy" && h.ModelLoaded
}

type wireElement struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BBox         []float64 `json:"bbox"`
	Confidence   float64   `json:"confidence"`
	Center       []float64 `json:"center"`
	Label        string    `json:"label"`
	Interactable bool      `json:"interactable"`
}

type detectResponse struct {
	AllElements []wireElement `json:"all_elements"`
	Error       string        `json:"error"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, err
	}

	var health Health
	if err := c.do(req, &health); err != nil {
		return Health{}, fmt.Errorf("health check failed: %w", err)
	}
	return health, nil
}

func (c *Client) Detect(ctx context.Context, capture *entity.Capture) ([]entity.Element, error) {
	if capture == nil || len(capture.Data) == 0 {
		return nil, fmt.Errorf("%w: empty capture", entity.ErrPerceptionUnavailable)
	}

	body, contentType, err := imageForm(capture)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	var resp detectResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("detect failed: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("detect failed: %s", resp.Error)
	}

	elements := convert(resp.AllElements, capture)
	if c.logger != nil {
		c.logger.Debug("OmniParser detection finished",
			"elements", len(elements),
			"dropped", len(resp.AllElements)-len(elements),
			"duration", time.Since(started))
	}
	return elements, nil
}

func imageForm(capture *entity.Capture) (io.Reader, string, error) {
	format := capture.Format
	if format == "" {
		format = "jpeg"
	}

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("image", capture.ID+"."+format)
	if err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(capture.Data); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func convert(raw []wireElement, capture *entity.Capture) []entity.Element {
	elements := make([]entity.Element, 0, len(raw))
	for i, w := range raw {
		if len(w.BBox) != 4 || w.BBox[2] <= w.BBox[0] || w.BBox[3] <= w.BBox[1] {
			continue
		}
		id := w.ID
		if id == "" {
			id = fmt.Sprintf("element_%d", i)
		}
		typ, _ := entity.ParseElementType(w.Type)

		elements = append(elements, entity.Element{
			ID:           id,
			Type:         typ,
			Box:          capture.ToSurface(entity.BBox{X1: w.BBox[0], Y1: w.BBox[1], X2: w.BBox[2], Y2: w.BBox[3]}),
			Confidence:   w.Confidence,
			Label:        w.Label,
			Interactable: w.Interactable,
		})
	}
	return elements
}
