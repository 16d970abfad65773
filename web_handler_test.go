package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadCall struct {
	chatID int64
	path   string
}

func newTestServer(t *testing.T) (*Server, *Bot, *[]loadCall) {
	t.Helper()
	b := newTestBot(t, &fakeAPI{}, BotConfig{})
	srv := NewServer(context.Background(), b, NewMetrics(), discardLogger())
	calls := &[]loadCall{}
	srv.load = func(chatID int64, path string) {
		*calls = append(*calls, loadCall{chatID: chatID, path: path})
	}
	return srv, b, calls
}

func uploadRequest(t *testing.T, id, name, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if id != "" {
		require.NoError(t, w.WriteField("uuid", id))
	}
	if name != "" {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadForm(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?id=abc-123", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="uuid" value="abc-123"`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?id=<script>", nil))
	assert.NotContains(t, rec.Body.String(), "<script>")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload(t *testing.T) {
	srv, b, calls := newTestServer(t)
	id := b.IssueUpload(77)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, id, "../../survey.csv", "Age\n18-24\n"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "File uploaded successfully")
	require.Len(t, *calls, 1)
	assert.Equal(t, int64(77), (*calls)[0].chatID)
	assert.Equal(t, filepath.Join(b.uploadDir, id, "survey.csv"), (*calls)[0].path)

	saved, err := os.ReadFile((*calls)[0].path)
	require.NoError(t, err)
	assert.Equal(t, "Age\n18-24\n", string(saved))
}

func TestUploadIDIsSingleUse(t *testing.T) {
	srv, b, calls := newTestServer(t)
	id := b.IssueUpload(77)

	tests := []struct {
		name string
		code int
	}{
		{name: "first", code: http.StatusOK},
		{name: "reused", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, uploadRequest(t, id, "survey.csv", "Age\n18-24\n"))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
	assert.Len(t, *calls, 1)
	_, ok := b.ChatForUpload(id)
	assert.False(t, ok)
}

func TestUploadErrors(t *testing.T) {
	srv, b, calls := newTestServer(t)
	id := b.IssueUpload(1)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{name: "get", req: httptest.NewRequest(http.MethodGet, "/upload", nil), code: http.StatusMethodNotAllowed},
		{name: "no file", req: uploadRequest(t, id, "", ""), code: http.StatusBadRequest},
		{name: "no uuid", req: uploadRequest(t, "", "a.csv", "x"), code: http.StatusBadRequest},
		{name: "unknown uuid", req: uploadRequest(t, "not-issued", "a.csv", "x"), code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
	assert.Empty(t, *calls)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.metrics.Query("bot_dist", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `survey_queries_total{command="bot_dist",outcome="ok"} 1`))
}
