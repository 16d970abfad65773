package main

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/survey_analyzer/report"
)

// maxSizePhoto is the largest chart sent as a photo; bigger ones go as
// documents so Telegram does not recompress them.
const maxSizePhoto = 150000

// sendGraphVisualization sends a PNG chart of column to the chat.
func (b *Bot) sendGraphVisualization(ctx context.Context, chatID int64, graph []byte, column, caption string) {
	pngFile := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("distribution_%s_%s.png", report.Slug(column), time.Now().Format("20060102-150405")),
		Bytes: graph,
	}

	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, pngFile)
		photo.Caption = caption
		b.send(ctx, photo)
		return
	}
	doc := tgbotapi.NewDocumentUpload(chatID, pngFile)
	doc.Caption = caption
	b.send(ctx, doc)
}
