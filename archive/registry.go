package archive

import (
	"context"
	"fmt"
	"log/slog"
)

// Registry binds one channel per guild as the authorized upload target.
// Configuration is owner-gated and idempotent: repeated calls with the same
// arguments leave state unchanged, re-configuration overwrites.
type Registry struct {
	Ledger Ledger
	Owners OwnerResolver
}

// Configure upserts the server row, setting channelID as the upload channel.
// Only the guild owner may configure; a non-owner gets ErrPermissionDenied and
// no write happens. Ledger errors propagate unmodified.
func (r *Registry) Configure(ctx context.Context, guildID, guildName, channelID, requesterID string) error {
	ownerID, err := r.Owners.Owner(ctx, guildID)
	if err != nil {
		return fmt.Errorf("resolve guild owner: %w", err)
	}
	if requesterID != ownerID {
		return ErrPermissionDenied
	}
	if err := r.Ledger.UpsertServerChannel(ctx, guildID, guildName, channelID, ownerID); err != nil {
		return err
	}
	slog.Info("upload channel configured",
		slog.String("guild_id", guildID),
		slog.String("channel_id", channelID),
		slog.String("component", "registry"))
	return nil
}

// Authorized returns the server row when channelID is the guild's configured
// upload channel, and ErrNotConfigured otherwise (including when the guild has
// no row at all).
func (r *Registry) Authorized(ctx context.Context, guildID, channelID string) (*Server, error) {
	srv, err := r.Ledger.ServerByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if srv == nil || srv.TargetChannelID != channelID {
		return nil, ErrNotConfigured
	}
	return srv, nil
}
