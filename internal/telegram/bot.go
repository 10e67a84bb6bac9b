// Package telegram exposes the sources as Telegram bot commands.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/lepinkainen/shamash/internal/render"
	"github.com/lepinkainen/shamash/internal/sources"
)

const (
	// DefaultCommandTimeout bounds the work behind one command.
	DefaultCommandTimeout = 8 * time.Second
	// seenCapacity is how many update IDs are remembered for deduplication.
	seenCapacity = 1000
	pollTimeout  = 30
	// replyTimeout bounds a reply, which may outlive the update context
	// during shutdown.
	replyTimeout = 5 * time.Second
)

// UpdateSource is the polling side of the Bot API.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ UpdateSource = (*tgbotapi.BotAPI)(nil)

// Bot dispatches chat commands to the sources.
type Bot struct {
	sources  *sources.Set
	sender   Sender
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	newRand  func() *rand.Rand
	names    []string
	seen     *seenUpdates
	commands map[string]command
}

// Option configures a Bot.
type Option func(*Bot)

// WithTimeout sets the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithRand sets the random source factory used by random picks.
func WithRand(newRand func() *rand.Rand) Option {
	return func(b *Bot) {
		b.newRand = newRand
	}
}

// WithSourceNames sets the names listed by /ping.
func WithSourceNames(names []string) Option {
	return func(b *Bot) {
		b.names = names
	}
}

// New creates a bot over a source set.
func New(set *sources.Set, sender Sender, opts ...Option) *Bot {
	b := &Bot{
		sources: set,
		sender:  sender,
		timeout: DefaultCommandTimeout,
		logger:  slog.Default(),
		now:     time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		seen: newSeenUpdates(seenCapacity),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.commands = b.commandTable()
	return b
}

// Run polls for updates until ctx is done. Each update is handled in its
// own goroutine; Run waits for them before returning.
func (b *Bot) Run(ctx context.Context, updates UpdateSource) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	ch := updates.GetUpdatesChan(cfg)

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			updates.StopReceivingUpdates()
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate answers one update. Repeated update IDs are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if !b.seen.add(update.UpdateID) {
		b.logger.Debug("Skipping duplicate update", "update_id", update.UpdateID)
		return
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	name := strings.ToLower(msg.Command())
	args := strings.TrimSpace(msg.CommandArguments())
	logger := b.logger.With("request_id", uuid.NewString(), "command", name, "chat_id", msg.Chat.ID)

	cmd, ok := b.commands[name]
	if !ok {
		b.reply(ctx, logger, msg.Chat.ID, render.Summary{Body: "Unknown command. Try /help."})
		return
	}

	start := time.Now()
	summary := b.execute(ctx, logger, cmd, args)
	logger.Info("Handled command", "duration", time.Since(start))
	b.reply(ctx, logger, msg.Chat.ID, summary)
}

func (b *Bot) execute(ctx context.Context, logger *slog.Logger, cmd command, args string) render.Summary {
	cmdCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	summary := cmd.run(cmdCtx, args)
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Command timed out", "timeout", b.timeout)
	}
	if summary.Empty() {
		return render.Fallback(cmd.title, cmd.fallback)
	}
	return summary
}

func (b *Bot) reply(ctx context.Context, logger *slog.Logger, chatID int64, summary render.Summary) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()
	if err := b.sender.Send(sendCtx, chatID, summary.Message()); err != nil {
		logger.Error("Failed to send reply", "error", err)
	}
}

// PostDaily sends the daily text to a chat.
func (b *Bot) PostDaily(ctx context.Context, chatID int64) error {
	cmd := b.commands["today"]
	summary := b.execute(ctx, b.logger.With("job", "daily_post"), cmd, "")
	return b.sender.Send(ctx, chatID, summary.Message())
}
