// Package bot is the Telegram front end. It forwards user messages and
// uploaded documents into the resume processors and renders their results;
// no business logic lives here.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DovudAsadov/ai-hr-platform/internal/processor"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

// telegramMessageLimit is Telegram's hard cap per message; replies are
// chunked below it.
const telegramMessageLimit = 4000

// maxDocumentSize caps downloaded resume files at 10MB.
const maxDocumentSize = 10 << 20

type mode string

const (
	modeAnalyze  mode = "analyze"
	modeOptimize mode = "optimize"
)

const startMessage = `Welcome to the AI HR Platform!

Send me your resume as a PDF document or paste it as text.

Commands:
/analyze - switch to analysis mode (detailed feedback)
/optimize - switch to optimization mode (ATS-friendly rewrite)
/help - usage details`

const helpMessage = `How to use this bot:

1. Pick a mode with /analyze or /optimize (analysis is the default).
2. Send your resume as a PDF document, or paste the text directly.
3. Wait for the result. Long resumes can take up to a minute.

Commands:
/start - welcome message
/analyze - detailed resume feedback
/optimize - ATS-optimized rewrite
/help - this message`

// Bot runs the Telegram long-polling loop. Each update is handled in its
// own goroutine so one slow backend call does not starve other chats.
type Bot struct {
	api       *tgbotapi.BotAPI
	analyzer  *processor.ResumeAnalyzer
	optimizer *processor.ResumeOptimizer
	logger    logger.Logger

	httpClient *http.Client

	mu    sync.Mutex
	modes map[int64]mode
}

// New creates a Bot authenticated with the given token.
func New(
	token string,
	analyzer *processor.ResumeAnalyzer,
	optimizer *processor.ResumeOptimizer,
	log logger.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("can't authenticate telegram bot: %w", err)
	}
	return &Bot{
		api:        api,
		analyzer:   analyzer,
		optimizer:  optimizer,
		logger:     log,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		modes:      make(map[int64]mode),
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("telegram bot started", logger.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand():
		b.handleCommand(chatID, msg.Command())
	case msg.Document != nil:
		b.handleDocument(ctx, chatID, msg.Document)
	case strings.TrimSpace(msg.Text) != "":
		b.process(ctx, chatID, processor.TextDocument(msg.Text))
	default:
		b.reply(chatID, "Send me a resume as text or a PDF document.")
	}
}

func (b *Bot) handleCommand(chatID int64, command string) {
	switch command {
	case "start":
		b.reply(chatID, startMessage)
	case "help":
		b.reply(chatID, helpMessage)
	case "analyze":
		b.setMode(chatID, modeAnalyze)
		b.reply(chatID, "Analysis mode. Send your resume as text or a PDF document.")
	case "optimize":
		b.setMode(chatID, modeOptimize)
		b.reply(chatID, "Optimization mode. Send your resume as text or a PDF document.")
	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	if !strings.EqualFold(doc.MimeType, "application/pdf") &&
		!strings.HasSuffix(strings.ToLower(doc.FileName), ".pdf") {
		b.reply(chatID, "Only PDF documents are supported.")
		return
	}
	if doc.FileSize > maxDocumentSize {
		b.reply(chatID, "That file is too large. Please send a PDF under 10MB.")
		return
	}

	data, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("document download failed", logger.Error(err))
		b.reply(chatID, "Could not download your document, please try again.")
		return
	}

	b.process(ctx, chatID, processor.BytesDocument(data))
}

func (b *Bot) process(ctx context.Context, chatID int64, doc processor.Document) {
	b.sendTyping(chatID)

	var result processor.Result
	switch b.getMode(chatID) {
	case modeOptimize:
		result = b.optimizer.Process(ctx, doc)
	default:
		result = b.analyzer.Process(ctx, doc)
	}

	if payload, ok := result.Payload(); ok {
		b.replyChunked(chatID, payload)
		return
	}
	b.reply(chatID, "Sorry, that didn't work: "+result.ErrMessage())
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func (b *Bot) setMode(chatID int64, m mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes[chatID] = m
}

func (b *Bot) getMode(chatID int64) mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.modes[chatID]; ok {
		return m
	}
	return modeAnalyze
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("typing action failed", logger.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send failed", logger.Int64("chat", chatID), logger.Error(err))
	}
}

// replyChunked splits long results across messages under Telegram's limit.
func (b *Bot) replyChunked(chatID int64, text string) {
	for _, chunk := range splitMessage(text, telegramMessageLimit) {
		b.reply(chatID, chunk)
	}
}

// splitMessage breaks text into chunks of at most limit bytes, preferring
// line boundaries. A windowed cut with no newline backs off to a rune
// boundary so no chunk ends mid-character.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > 0 {
		if len(text) <= limit {
			chunks = append(chunks, text)
			break
		}
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	return chunks
}
