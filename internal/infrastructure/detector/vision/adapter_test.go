package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElements(t *testing.T) {
	content := "Here you go:\n```json\n" + `[
		{"type":"button","bbox":[10,20,110,60],"confidence":0.92,"label":" Submit ","interactable":true},
		{"type":"sidebar","bbox":[0,0,50,500],"confidence":0.4,"label":"Nav"},
		{"type":"icon","bbox":[5,5,5,9],"confidence":0.9,"label":"broken"},
		{"type":"link","bbox":[0,0,10,10],"confidence":1.7,"label":"Home","interactable":false}
	]` + "\n```"

	elements, err := ParseElements(content, &entity.Capture{Scale: 1})
	require.NoError(t, err)
	require.Len(t, elements, 3)

	assert.Equal(t, entity.ElementButton, elements[0].Type)
	assert.Equal(t, "Submit", elements[0].Label)
	assert.True(t, elements[0].Interactable)
	assert.Equal(t, entity.BBox{X1: 10, Y1: 20, X2: 110, Y2: 60}, elements[0].Box)

	assert.Equal(t, entity.ElementText, elements[1].Type, "unknown types become text")
	assert.False(t, elements[1].Interactable)

	assert.Equal(t, 1.0, elements[2].Confidence)
	assert.False(t, elements[2].Interactable)
}

func TestParseElements_ScalesToSurface(t *testing.T) {
	elements, err := ParseElements(`[{"type":"button","bbox":[10,10,20,20],"confidence":0.9,"label":"Go"}]`,
		&entity.Capture{Scale: 0.5})
	require.NoError(t, err)
	require.Len(t, elements, 1)

	assert.Equal(t, entity.BBox{X1: 20, Y1: 20, X2: 40, Y2: 40}, elements[0].Box)
}

func TestParseElements_NoArray(t *testing.T) {
	_, err := ParseElements("I cannot see any elements.", nil)
	assert.Error(t, err)
}

func TestParseElements_InvalidJSON(t *testing.T) {
	_, err := ParseElements(`[{"type":}]`, nil)
	assert.Error(t, err)
}

func TestDetector_Detect(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {
					"role": "assistant",
					"content": "[{\"type\":\"icon\",\"bbox\":[0,0,40,40],\"confidence\":0.8,\"label\":\"Menu\"}]"
				}
			}]
		}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = server.URL
	cfg.Logger = logger.NewNop()
	detector := NewDetector(cfg)

	elements, err := detector.Detect(context.Background(), &entity.Capture{
		Data: []byte{0xff, 0xd8}, Format: "jpeg", Width: 800, Height: 600, Scale: 1,
	})
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, entity.ElementIcon, elements[0].Type)
	assert.Equal(t, "Menu", elements[0].Label)
	assert.True(t, elements[0].Interactable)

	assert.True(t, strings.Contains(body, "data:image/jpeg;base64,/9g="), "request should carry the capture")
	assert.Contains(t, body, "800x600 pixels")
}

func TestDetector_Detect_EmptyCapture(t *testing.T) {
	detector := NewDetector(DefaultConfig("k", "m"))

	_, err := detector.Detect(context.Background(), &entity.Capture{})
	assert.ErrorIs(t, err, entity.ErrPerceptionUnavailable)
}

func TestDetector_Detect_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultConfig("k", "m")
	cfg.BaseURL = server.URL
	_, err := NewDetector(cfg).Detect(context.Background(), &entity.Capture{Data: []byte{1}})
	assert.Error(t, err)
}
