package main

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/survey_analyzer/plot"
	"github.com/pivolan/survey_analyzer/report"
	"github.com/pivolan/survey_analyzer/survey"
)

const botHelp = `Send a survey file (xlsx, csv or an archive of one) to start.

/list [n] - list questions
/search <term> - search questions
/searchopt <term> - search answer options
/dist <column> - answer distribution with a chart
/subset <column> <answer> - start a subset of respondents
/and <column> <answer> - narrow the current subset
/within <column> - distribution inside the current subset
/reset - drop the current subset
/options <column> - distinct answers of a question
/numeric <column> - numeric summary
/report - Markdown report of every choice question
/upload - link for uploading big files

Quote arguments with spaces: /subset Country "United States"`

// chartLimit caps the bars of charts sent to chats.
const chartLimit = 15

// queryCommands run through the chat session.
var queryCommands = map[string]bool{
	"list": true, "search": true, "searchopt": true, "dist": true,
	"subset": true, "and": true, "within": true, "reset": true,
	"options": true, "numeric": true,
}

// parseCommand splits "/cmd@bot arg ..." into the lower-cased command and
// its arguments. Text that is not a command yields an empty command.
func parseCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	fields := splitArgs(text[1:])
	if len(fields) == 0 {
		return "", nil
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, fields[1:]
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	cmd, args := parseCommand(message.Text)

	switch cmd {
	case "":
		b.reply(ctx, chatID, "Send a survey file or type /help. Big files can be uploaded here: "+b.uploadLink(chatID))
		return
	case "start", "help":
		b.reply(ctx, chatID, botHelp)
		return
	case "upload":
		b.reply(ctx, chatID, "Upload your file here: "+b.uploadLink(chatID))
		return
	}

	s, ok := b.session(chatID)
	if !ok {
		b.reply(ctx, chatID, "No survey loaded yet. Send a file first.")
		return
	}

	switch {
	case cmd == "report":
		b.handleReport(ctx, chatID, s.table)
	case queryCommands[cmd]:
		out, err := s.run(cmd, args)
		if err != nil {
			b.reply(ctx, chatID, "Error: "+err.Error())
			return
		}
		b.replyPre(ctx, chatID, out)
		if cmd == "dist" || cmd == "within" {
			b.handleChart(ctx, chatID, s, cmd, args[0])
		}
	default:
		b.reply(ctx, chatID, fmt.Sprintf("Unknown command /%s. Use /help.", cmd))
	}
}

func (b *Bot) handleChart(ctx context.Context, chatID int64, s *session, cmd, column string) {
	var (
		d   *survey.Distribution
		err error
	)
	caption := "Distribution of answers: " + column
	if cmd == "within" {
		sub := s.subset()
		d, err = s.table.DistributionWithin(column, sub)
		if sub != nil {
			caption += "\nSubset: " + sub.Description()
		}
	} else {
		d, err = s.table.Distribution(column)
	}
	if err != nil {
		return
	}

	graph, err := plot.DrawDistributionBar(d, chartLimit)
	if err != nil {
		b.log.Debug("chart skipped", "column", column, "err", err)
		return
	}
	b.sendGraphVisualization(ctx, chatID, graph, column, caption)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, t *survey.Table) {
	content, err := report.Generate(t, report.Options{Limit: 20})
	b.metrics.Query("bot_report", err)
	if err != nil {
		b.reply(ctx, chatID, "Error: "+err.Error())
		return
	}
	doc := tgbotapi.NewDocumentUpload(chatID, tgbotapi.FileBytes{
		Name:  "survey_analysis_report.md",
		Bytes: []byte(content),
	})
	doc.Caption = fmt.Sprintf("%s: %d questions, %d respondents",
		report.DefaultTitle, len(t.Questions()), t.RespondentCount())
	b.send(ctx, doc)
}
