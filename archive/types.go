// Package archive holds the core ingestion and reconciliation pipeline: the
// eligibility checks, the stage -> archive -> record protocol shared by live
// ingestion and historical sync, and the idempotency rules that prevent a
// message from ever being archived twice. Platform, storage, and database
// specifics live behind the collaborator interfaces declared here.
package archive

import (
	"context"
	"strings"
	"time"
)

// Message is the platform-neutral view of one chat post.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   string
	AuthorID    string
	AuthorTag   string
	AuthorName  string
	Content     string
	Timestamp   time.Time
	FromBot     bool
	Attachments []Attachment
}

// Attachment is one media file carried by a message.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
}

// IsVideo reports whether the attachment's declared content type indicates video.
func (a Attachment) IsVideo() bool {
	return strings.HasPrefix(a.ContentType, "video")
}

// Server is the ledger's view of one configured guild.
type Server struct {
	ID              int64
	GuildID         string
	TargetChannelID string
	OwnerID         string
}

// VideoRecord is one archived media item as stored in the ledger.
type VideoRecord struct {
	ServerID     int64
	MessageID    string
	ActivityName string
	FileURL      string
	VideoOwner   string
}

// Ledger is the relational metadata store. All writes are upserts or
// insert-if-absent so concurrent writers rely on uniqueness constraints,
// never on locks.
type Ledger interface {
	// UpsertServerChannel creates or reconfigures a server row, binding
	// channelID as the single authorized upload channel.
	UpsertServerChannel(ctx context.Context, guildID, name, channelID, ownerID string) error
	// ServerByGuild returns the server row for a guild, or (nil, nil) when
	// the guild has never been configured.
	ServerByGuild(ctx context.Context, guildID string) (*Server, error)
	// EnsureUser records a contributor if not already known.
	EnsureUser(ctx context.Context, userID, username string) error
	// InsertVideoIfAbsent inserts a video record keyed by
	// (server, message id) and reports whether a new row was created.
	InsertVideoIfAbsent(ctx context.Context, rec VideoRecord) (bool, error)
}

// Stager fetches a remote media blob into transient local storage and returns
// the local path. The caller owns removal of the staged file.
type Stager interface {
	Stage(ctx context.Context, url, filename string) (string, error)
}

// Archiver streams a staged local file to durable object storage under the
// given key and returns a stable public locator.
type Archiver interface {
	Archive(ctx context.Context, localPath, key, contentType string) (string, error)
}

// Compressor optionally re-encodes a staged file before archival, returning
// the path of a new transient output file owned by the caller.
type Compressor interface {
	Compress(ctx context.Context, inputPath string) (string, error)
}

// Notifier delivers user-visible signals on the chat platform.
type Notifier interface {
	// Reply posts a text reply referencing the given message.
	Reply(ctx context.Context, channelID, messageID, text string) error
	// Say posts a plain message to the channel.
	Say(ctx context.Context, channelID, text string) error
	// React attaches an emoji reaction to the given message.
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// History pages a channel's message history newest-first. A page shorter than
// limit (or empty) signals the start of history has been reached.
type History interface {
	FetchPage(ctx context.Context, channelID string, limit int, beforeID string) ([]Message, error)
}

// OwnerResolver resolves a guild's owner for permission gates.
type OwnerResolver interface {
	Owner(ctx context.Context, guildID string) (string, error)
}
