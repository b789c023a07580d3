// Package discordbot adapts the archive core to Discord via discordgo: session
// lifecycle, message-create wiring, a prefix-command router, and the History /
// Notifier / OwnerResolver implementations the core consumes.
package discordbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/activitybank/archiver/archive"
	"github.com/activitybank/archiver/telemetry"
)

// NewSession builds a discordgo session with the gateway intents the bot
// needs: guilds, guild messages, and message content.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return s, nil
}

// Bot owns the event wiring between Discord and the archive core. The core
// collaborators are injected; the bot itself only routes.
type Bot struct {
	Session    *discordgo.Session
	Registry   *archive.Registry
	Handler    *archive.Handler
	Reconciler *archive.Reconciler
	Prefix     string

	ctx context.Context
}

// Start registers handlers, opens the gateway connection, and closes it when
// ctx is cancelled. The passed context also bounds all event processing.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.Session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Handler.BotUserID = r.User.ID
		slog.Info("discord session ready",
			slog.String("user", r.User.String()),
			slog.Int("guilds", len(r.Guilds)),
			slog.String("component", "discord"))
	})
	b.Session.AddHandler(b.onMessageCreate)
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	go func() {
		<-ctx.Done()
		if err := b.Session.Close(); err != nil {
			slog.Error("discord session close failed", slog.Any("err", err))
		}
	}()
	return nil
}

// onMessageCreate is the single gateway entry point: commands go through the
// router, everything else through passive ingestion.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := toMessage(m.Message)
	if msg.FromBot {
		return
	}
	ctx := telemetry.WithCorrelation(b.ctx, uuid.NewString())

	if name, ok := ParseCommand(msg.Content, b.Prefix); ok {
		if cmd, known := b.routes()[name]; known {
			cmd(ctx, msg)
			return
		}
		// Unknown prefixed text still falls through to ingestion, matching
		// the upload path where message text is just the activity label.
	}

	ctx, span := telemetry.StartSpan(ctx, "archiver", "ingest.handle",
		attribute.String("message_id", msg.ID),
		attribute.String("guild_id", msg.GuildID))
	defer span.End()
	outcome, err := b.Handler.Handle(ctx, msg)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	span.SetAttributes(attribute.String("outcome", outcome.String()))
}
