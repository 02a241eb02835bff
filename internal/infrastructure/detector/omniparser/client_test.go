package omniparser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vision-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detectBody = `{
	"icons": [],
	"buttons": [],
	"text": [],
	"interactable": [],
	"all_elements": [
		{"id":"element_0","type":"button","bbox":[100,100,300,150],"confidence":0.93,"center":[200,125],"area":10000,"interactable":true,"label":"Submit"},
		{"id":"element_1","type":"sidebar","bbox":[0,0,80,800],"confidence":0.6,"center":[40,400],"area":64000,"interactable":false,"label":"sidebar_1"},
		{"id":"element_2","type":"icon","bbox":[10,10,10,30],"confidence":0.9,"interactable":true,"label":"broken"}
	]
}`

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/", Timeout: 5 * time.Second})
}

func TestClient_Health(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":true}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Ready())
}

func TestClient_Health_ModelNotLoaded(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":false}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, health.Ready())
}

func TestClient_Detect(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		assert.Equal(t, "cap-1.jpeg", header.Filename)

		_, _ = w.Write([]byte(detectBody))
	})

	elements, err := client.Detect(context.Background(), &entity.Capture{
		ID: "cap-1", Data: []byte("jpeg-bytes"), Format: "jpeg", Scale: 1,
	})
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, "element_0", elements[0].ID)
	assert.Equal(t, entity.ElementButton, elements[0].Type)
	assert.Equal(t, "Submit", elements[0].Label)
	assert.True(t, elements[0].Interactable)
	assert.Equal(t, entity.Point{X: 200, Y: 125}, elements[0].Center())

	assert.Equal(t, entity.ElementText, elements[1].Type)
	assert.False(t, elements[1].Interactable)
}

func TestClient_Detect_ScalesBoxes(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"all_elements":[{"id":"a","type":"icon","bbox":[50,50,60,60],"confidence":0.9,"interactable":true,"label":"Menu"}]}`))
	})

	elements, err := client.Detect(context.Background(), &entity.Capture{Data: []byte{1}, Scale: 0.5})
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, entity.BBox{X1: 100, Y1: 100, X2: 120, Y2: 120}, elements[0].Box)
}

func TestClient_Detect_ServerError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	})

	_, err := client.Detect(context.Background(), &entity.Capture{Data: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model crashed")
}

func TestClient_Detect_ErrorField(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"No image provided"}`))
	})

	_, err := client.Detect(context.Background(), &entity.Capture{Data: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No image provided")
}

func TestClient_Detect_EmptyCapture(t *testing.T) {
	client := NewClient(DefaultConfig())

	_, err := client.Detect(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrPerceptionUnavailable)
}

func TestClient_Detect_Cancelled(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Detect(ctx, &entity.Capture{Data: []byte{1}})
	assert.ErrorIs(t, err, context.Canceled)
}
