package main

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

var uploadPage = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html>
<head><title>Upload survey</title></head>
<body>
<h1>Upload survey</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
  <input type="hidden" name="uuid" value="{{.}}">
  <input type="file" name="file" accept=".xlsx,.xlsm,.csv,.tsv,.zip,.gz,.lz4,.zst">
  <input type="submit" value="Upload">
</form>
</body>
</html>
`))

// maxUploadSize bounds the multipart body of /upload.
const maxUploadSize = 512 << 20

// Server serves the upload form, the upload endpoint and metrics.
type Server struct {
	bot     *Bot
	metrics *Metrics
	log     *slog.Logger
	// load runs the dataset load of an accepted upload.
	load func(chatID int64, filePath string)
}

// NewServer ties uploads to bot sessions. Loads started by uploads run on ctx.
func NewServer(ctx context.Context, bot *Bot, m *Metrics, logger *slog.Logger) *Server {
	s := &Server{bot: bot, metrics: m, log: logger}
	s.load = func(chatID int64, filePath string) {
		go bot.LoadForChat(ctx, chatID, filePath)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleForm)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := uploadPage.Execute(w, r.URL.Query().Get("id")); err != nil {
		http.Error(w, "Error rendering upload form", http.StatusInternalServerError)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	id := r.FormValue("uuid")
	if id == "" {
		http.Error(w, "Error getting uuid", http.StatusBadRequest)
		return
	}
	chatID, ok := s.bot.ChatForUpload(id)
	if !ok {
		http.Error(w, "Unknown or expired upload link, ask the bot for a new one", http.StatusNotFound)
		return
	}

	dir := filepath.Join(s.bot.uploadDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	filePath := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(filePath)
	if err != nil {
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	_, err = io.Copy(dst, file)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.log.Warn("save upload", "path", filePath, "err", err)
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}

	s.bot.consumeUpload(id)
	s.log.Info("upload saved", "chat", chatID, "path", filePath, "bytes", header.Size)
	s.load(chatID, filePath)
	io.WriteString(w, "File uploaded successfully, results will arrive in the chat.")
}
