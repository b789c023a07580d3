package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/activitybank/archiver/archive"
)

// Store implements archive.Ledger on Postgres. Every write is an upsert or an
// insert-if-absent: correctness under concurrent writers (live ingestion
// racing a sync run) rests on the uniqueness constraints, not on locks.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

// UpsertServerChannel creates or reconfigures the server row, binding a single
// authorized upload channel. Re-configuration overwrites, never appends.
func (s *Store) UpsertServerChannel(ctx context.Context, guildID, name, channelID, ownerID string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO servers (discord_server_id, name, target_channel_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (discord_server_id)
		DO UPDATE SET name=EXCLUDED.name, target_channel_id=EXCLUDED.target_channel_id, owner_id=EXCLUDED.owner_id, updated_at=NOW()`,
		guildID, name, channelID, ownerID)
	if err != nil {
		return fmt.Errorf("upsert server: %w", err)
	}
	return nil
}

// ServerByGuild returns the server row for a guild, or (nil, nil) when the
// guild has never been configured.
func (s *Store) ServerByGuild(ctx context.Context, guildID string) (*archive.Server, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, discord_server_id, COALESCE(target_channel_id,''), COALESCE(owner_id,'')
		FROM servers WHERE discord_server_id=$1`, guildID)
	srv := &archive.Server{}
	if err := row.Scan(&srv.ID, &srv.GuildID, &srv.TargetChannelID, &srv.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select server: %w", err)
	}
	return srv, nil
}

// EnsureUser records a contributor on first sight; later sightings are no-ops.
func (s *Store) EnsureUser(ctx context.Context, userID, username string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (discord_user_id, username)
		VALUES ($1, $2) ON CONFLICT (discord_user_id) DO NOTHING`, userID, username)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// InsertVideoIfAbsent inserts one video record keyed by (server, message id)
// and reports whether a new row was created. A false return with nil error
// means the message was already archived.
func (s *Store) InsertVideoIfAbsent(ctx context.Context, rec archive.VideoRecord) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `INSERT INTO videos (server_id, message_id, activity_name, file_url, video_owner)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (server_id, message_id) DO NOTHING`,
		rec.ServerID, rec.MessageID, rec.ActivityName, rec.FileURL, rec.VideoOwner)
	if err != nil {
		return false, fmt.Errorf("insert video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert video rows affected: %w", err)
	}
	return n > 0, nil
}

// Counts returns ledger tallies for the status endpoint.
func (s *Store) Counts(ctx context.Context) (servers, users, videos int, err error) {
	if err = s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM servers`).Scan(&servers); err != nil {
		return 0, 0, 0, err
	}
	if err = s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&users); err != nil {
		return 0, 0, 0, err
	}
	if err = s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM videos`).Scan(&videos); err != nil {
		return 0, 0, 0, err
	}
	return servers, users, videos, nil
}
