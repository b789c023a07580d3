package discordbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/activitybank/archiver/archive"
	"github.com/activitybank/archiver/telemetry"
)

// commandFunc handles one routed prefix command.
type commandFunc func(ctx context.Context, msg archive.Message)

// routes maps the closed set of command names to their handlers.
func (b *Bot) routes() map[string]commandFunc {
	return map[string]commandFunc{
		"channel": b.cmdChannel,
		"sync":    b.cmdSync,
	}
}

// ParseCommand returns the command name when content is exactly prefix+name
// (trailing whitespace tolerated, no arguments).
func ParseCommand(content, prefix string) (string, bool) {
	s := strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(s, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(s, prefix)
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return "", false
	}
	return name, true
}

// cmdChannel binds the current channel as the guild's upload target.
func (b *Bot) cmdChannel(ctx context.Context, msg archive.Message) {
	adapter := &Adapter{S: b.Session}
	name := adapter.GuildName(ctx, msg.GuildID)
	err := b.Registry.Configure(ctx, msg.GuildID, name, msg.ChannelID, msg.AuthorID)
	switch {
	case err == nil:
		b.reply(ctx, msg, "✅ This channel is now set as the upload channel.")
	case errors.Is(err, archive.ErrPermissionDenied):
		b.reply(ctx, msg, "❌ Only the server owner can configure the bot.")
	default:
		slog.Error("error during setup", slog.Any("err", err), slog.String("guild_id", msg.GuildID))
		b.reply(ctx, msg, "❌ Failed to configure the bot.")
	}
}

// cmdSync backfills the channel's history. The reconciler itself announces
// start and completion; only gate failures and fatal errors are replied here.
func (b *Bot) cmdSync(ctx context.Context, msg archive.Message) {
	ctx, span := telemetry.StartSpan(ctx, "archiver", "sync.reconcile",
		attribute.String("guild_id", msg.GuildID),
		attribute.String("channel_id", msg.ChannelID))
	defer span.End()

	_, err := b.Reconciler.Reconcile(ctx, msg.GuildID, msg.ChannelID, msg.AuthorID)
	switch {
	case err == nil:
	case errors.Is(err, archive.ErrPermissionDenied):
		b.reply(ctx, msg, "❌ Only the server owner can sync old videos.")
	case errors.Is(err, archive.ErrNotConfigured):
		b.reply(ctx, msg, "❌ This channel is not configured for uploads.")
	default:
		telemetry.RecordError(span, err)
		slog.Error("error during sync", slog.Any("err", err), slog.String("guild_id", msg.GuildID))
		b.reply(ctx, msg, "❌ Sync failed due to an error.")
	}
}

func (b *Bot) reply(ctx context.Context, msg archive.Message, text string) {
	adapter := &Adapter{S: b.Session}
	if err := adapter.Reply(ctx, msg.ChannelID, msg.ID, text); err != nil {
		slog.Warn("command reply failed", slog.Any("err", err), slog.String("channel_id", msg.ChannelID))
	}
}
