package main

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/survey_analyzer/loader"
	"github.com/pivolan/survey_analyzer/survey"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/time/rate"
)

// maxMessageLen stays under the Telegram limit of 4096 characters.
const maxMessageLen = 4000

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// session is the query state of one chat.
type session struct {
	mu    sync.Mutex
	table *survey.Table
	repl  *Repl
	out   *bytes.Buffer
}

func newSession(t *survey.Table, m *Metrics) *session {
	out := &bytes.Buffer{}
	repl := NewRepl(t, out, m)
	repl.channel = "bot"
	return &session{table: t, repl: repl, out: out}
}

// run executes one command and returns what it printed.
func (s *session) run(cmd string, args []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Reset()
	_, err := s.repl.run(cmd, args)
	return s.out.String(), err
}

// subset returns the current subset of the chat, nil when there is none.
func (s *session) subset() *survey.Subset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repl.current
}

type upload struct {
	chatID int64
	issued time.Time
}

// Bot answers survey queries in Telegram chats. Every chat works on the
// dataset it uploaded last, or on the default dataset.
type Bot struct {
	api       botAPI
	log       *slog.Logger
	metrics   *Metrics
	limiter   *rate.Limiter
	uploadDir string
	publicURL string
	loadOpts  []loader.Option
	client    *http.Client

	mu       sync.RWMutex
	fallback *survey.Table
	sessions map[int64]*session
	uploads  map[string]upload
}

type BotConfig struct {
	UploadDir     string
	PublicURL     string
	RatePerSecond float64
	Default       *survey.Table
	LoadOptions   []loader.Option
}

func NewBot(api botAPI, cfg BotConfig, logger *slog.Logger, m *Metrics) *Bot {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	return &Bot{
		api:       api,
		log:       logger,
		metrics:   m,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		uploadDir: cfg.UploadDir,
		publicURL: cfg.PublicURL,
		loadOpts:  cfg.LoadOptions,
		client:    &http.Client{Timeout: 5 * time.Minute},
		fallback:  cfg.Default,
		sessions:  map[int64]*session{},
		uploads:   map[string]upload{},
	}
}

// HandleUpdate dispatches one update. Callers run it in its own goroutine.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil {
		return
	}
	if message.Document != nil {
		b.handleDocument(ctx, message)
		return
	}
	if message.Text != "" {
		b.handleCommand(ctx, message)
	}
}

// Table returns the dataset a chat queries.
func (b *Bot) Table(chatID int64) (*survey.Table, bool) {
	s, ok := b.session(chatID)
	if !ok {
		return nil, false
	}
	return s.table, true
}

// session returns the session of chatID, starting one on the default
// dataset when the chat has none.
func (b *Bot) session(chatID int64) (*session, bool) {
	b.mu.RLock()
	s, ok := b.sessions[chatID]
	b.mu.RUnlock()
	if ok {
		return s, true
	}
	if b.fallback == nil {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[chatID]; ok {
		return s, true
	}
	s = newSession(b.fallback, b.metrics)
	b.sessions[chatID] = s
	return s, true
}

func (b *Bot) setTable(chatID int64, t *survey.Table) {
	b.mu.Lock()
	b.sessions[chatID] = newSession(t, b.metrics)
	b.mu.Unlock()
}

// IssueUpload returns a one-off id that binds a web upload to chatID.
func (b *Bot) IssueUpload(chatID int64) string {
	id := uuid.NewV4().String()
	b.mu.Lock()
	b.uploads[id] = upload{chatID: chatID, issued: time.Now()}
	b.mu.Unlock()
	return id
}

func (b *Bot) ChatForUpload(id string) (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.uploads[id]
	return u.chatID, ok
}

// consumeUpload retires id once its file is saved.
func (b *Bot) consumeUpload(id string) {
	b.mu.Lock()
	delete(b.uploads, id)
	b.mu.Unlock()
}

func (b *Bot) uploadLink(chatID int64) string {
	return b.publicURL + "/?id=" + b.IssueUpload(chatID)
}

// Cleanup forgets upload ids and removes uploaded files older than maxAge.
func (b *Bot) Cleanup(maxAge time.Duration) {
	deadline := time.Now().Add(-maxAge)
	b.mu.Lock()
	for id, u := range b.uploads {
		if u.issued.Before(deadline) {
			delete(b.uploads, id)
		}
	}
	b.mu.Unlock()
	if err := removeOldFiles(b.uploadDir, deadline); err != nil && !os.IsNotExist(err) {
		b.log.Warn("cleanup uploads", "dir", b.uploadDir, "err", err)
	}
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn("telegram send failed", "err", err)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, truncate(text)))
}

// replyPre sends text as preformatted HTML so tables keep their columns.
func (b *Bot) replyPre(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+html.EscapeString(truncate(text))+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(ctx, msg)
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileURL, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		b.log.Warn("telegram file url", "chat", chatID, "err", err)
		b.reply(ctx, chatID, "Could not fetch the file. If it is too big, upload it here: "+b.uploadLink(chatID))
		return
	}

	filePath := filepath.Join(b.uploadDir, uuid.NewV4().String(), filepath.Base(message.Document.FileName))
	if err := b.download(ctx, fileURL, filePath); err != nil {
		b.log.Warn("telegram file download", "chat", chatID, "err", err)
		b.reply(ctx, chatID, "Error downloading file: "+err.Error())
		return
	}
	b.LoadForChat(ctx, chatID, filePath)
}

func (b *Bot) download(ctx context.Context, fileURL, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: %s", resp.Status)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadForChat loads filePath and makes it the dataset of chatID.
func (b *Bot) LoadForChat(ctx context.Context, chatID int64, filePath string) {
	b.reply(ctx, chatID, "File received, loading...")
	started := time.Now()
	t, err := loader.Load(ctx, filePath, b.loadOpts...)
	b.metrics.Load(started, err)
	if err != nil {
		b.log.Warn("load upload", "chat", chatID, "path", filePath, "err", err)
		b.reply(ctx, chatID, "Error: "+err.Error())
		return
	}
	b.setTable(chatID, t)
	b.reply(ctx, chatID, fmt.Sprintf("Loaded %d questions and %d respondents. Try /list or /help.",
		len(t.Questions()), t.RespondentCount()))
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLen {
		return text
	}
	return string(r[:maxMessageLen]) + "\n…"
}

func removeOldFiles(dirPath string, maxAge time.Time) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())

		if file.IsDir() {
			if err := removeOldFiles(filePath, maxAge); err != nil {
				return err
			}
			// drop directories emptied above; a non-empty one fails and stays
			os.Remove(filePath)
			continue
		}
		info, err := file.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
		}
	}
	return nil
}
