package archive

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/activitybank/archiver/telemetry"
)

// Outcome describes what Handle did with an inbound message.
type Outcome int

const (
	// OutcomeIgnored means the message was not eligible (bot author, no
	// guild, or not the configured upload channel). Silent no-op.
	OutcomeIgnored Outcome = iota
	// OutcomeRejected means the message lacked a valid video attachment and
	// the poster was told so.
	OutcomeRejected
	// OutcomeArchived means exactly one new video record was created.
	OutcomeArchived
	// OutcomeDuplicate means the message was already archived; no new record.
	OutcomeDuplicate
	// OutcomeFailed means staging, archival, or the ledger write failed and
	// the poster was told to resubmit.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeArchived:
		return "archived"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const placeholderActivity = "Unnamed Activity"

// Handler is the live-ingestion path: it validates an inbound post against
// the configured upload channel and runs the stage -> archive -> record
// protocol for exactly one item.
type Handler struct {
	Ledger     Ledger
	Stager     Stager
	Archiver   Archiver
	Compressor Compressor // optional; nil disables compression
	Notifier   Notifier
	BotUserID  string
}

// Handle processes one inbound post. Preconditions short-circuit in order:
// bot/self or non-guild messages are ignored; messages outside the configured
// upload channel are ignored; anything without exactly one video attachment is
// rejected with a visible reply. Eligible items are staged, archived, and
// recorded, then acknowledged with a reaction. Double delivery of the same
// message yields OutcomeDuplicate and no second record.
func (h *Handler) Handle(ctx context.Context, msg Message) (Outcome, error) {
	if msg.FromBot || msg.AuthorID == h.BotUserID || msg.GuildID == "" {
		return OutcomeIgnored, nil
	}

	srv, err := h.Ledger.ServerByGuild(ctx, msg.GuildID)
	if err != nil {
		return OutcomeFailed, err
	}
	if srv == nil || srv.TargetChannelID != msg.ChannelID {
		return OutcomeIgnored, nil
	}

	att, ok := soleVideoAttachment(msg)
	if !ok {
		if err := h.Notifier.Reply(ctx, msg.ChannelID, msg.ID, "❌ Please attach a video file."); err != nil {
			slog.Warn("rejection reply failed", slog.Any("err", err), slog.String("component", "ingest"))
		}
		telemetry.IncIngestRejected()
		return OutcomeRejected, ErrInvalidAttachment
	}

	archived, err := h.archiveItem(ctx, srv.ID, msg, att)
	if err != nil {
		slog.Error("failed to save video",
			slog.Any("err", err),
			slog.String("message_id", msg.ID),
			slog.String("guild_id", msg.GuildID),
			slog.String("component", "ingest"))
		if rerr := h.Notifier.Reply(ctx, msg.ChannelID, msg.ID, "❌ Failed to save video."); rerr != nil {
			slog.Warn("failure reply failed", slog.Any("err", rerr), slog.String("component", "ingest"))
		}
		telemetry.IncIngestFailed()
		return OutcomeFailed, err
	}
	if !archived {
		telemetry.IncIngestDuplicate()
		return OutcomeDuplicate, nil
	}
	telemetry.IncIngestArchived()
	return OutcomeArchived, nil
}

// soleVideoAttachment enforces the live-path eligibility rule: exactly one
// attachment, declared as video.
func soleVideoAttachment(msg Message) (Attachment, bool) {
	if len(msg.Attachments) != 1 || !msg.Attachments[0].IsVideo() {
		return Attachment{}, false
	}
	return msg.Attachments[0], true
}

// firstVideoAttachment is the sync-path eligibility rule: the message's first
// attachment, when it is a video.
func firstVideoAttachment(msg Message) (Attachment, bool) {
	if len(msg.Attachments) == 0 || !msg.Attachments[0].IsVideo() {
		return Attachment{}, false
	}
	return msg.Attachments[0], true
}

// activityName derives the record label from message text, falling back to a
// placeholder when blank.
func activityName(content string) string {
	if s := strings.TrimSpace(content); s != "" {
		return s
	}
	return placeholderActivity
}

// archiveItem runs the shared per-item protocol: stage the attachment locally,
// optionally compress, archive to durable storage, upsert the contributor, and
// insert the record keyed by (server, message id). The reaction is emitted only
// after the ledger write, and only for a newly created record. Staged files are
// removed on every exit path; cleanup failures are logged, never raised.
//
// Ordering is strict: a record is written only once the durable locator
// exists, so the ledger never references a missing object.
func (h *Handler) archiveItem(ctx context.Context, serverID int64, msg Message, att Attachment) (bool, error) {
	key := ObjectKey(msg.ID, att.Filename, time.Now().UTC())

	stageStart := time.Now()
	staged, err := h.Stager.Stage(ctx, att.URL, key)
	if err != nil {
		telemetry.IncStageFailed()
		return false, err
	}
	telemetry.ObserveStageDuration(time.Since(stageStart))
	defer discard(staged)

	upload := staged
	if h.Compressor != nil {
		compressed, cerr := h.Compressor.Compress(ctx, staged)
		if cerr != nil {
			// Best-effort: archive the original when compression fails.
			slog.Warn("compression failed, archiving original",
				slog.Any("err", cerr),
				slog.String("message_id", msg.ID),
				slog.String("component", "ingest"))
		} else {
			upload = compressed
			defer discard(compressed)
		}
	}

	uploadStart := time.Now()
	locator, err := h.Archiver.Archive(ctx, upload, key, att.ContentType)
	if err != nil {
		telemetry.IncUploadFailed()
		return false, err
	}
	telemetry.ObserveUploadDuration(time.Since(uploadStart))

	if err := h.Ledger.EnsureUser(ctx, msg.AuthorID, msg.AuthorTag); err != nil {
		return false, err
	}
	inserted, err := h.Ledger.InsertVideoIfAbsent(ctx, VideoRecord{
		ServerID:     serverID,
		MessageID:    msg.ID,
		ActivityName: activityName(msg.Content),
		FileURL:      locator,
		VideoOwner:   msg.AuthorName,
	})
	if err != nil {
		return false, err
	}
	if !inserted {
		slog.Debug("video already recorded, skipping",
			slog.String("message_id", msg.ID),
			slog.String("component", "ingest"))
		return false, nil
	}

	if err := h.Notifier.React(ctx, msg.ChannelID, msg.ID, "✅"); err != nil {
		// The record exists; a missing reaction is not worth failing over.
		slog.Warn("reaction failed", slog.Any("err", err), slog.String("message_id", msg.ID))
	}
	slog.Info("video archived",
		slog.String("message_id", msg.ID),
		slog.String("key", key),
		slog.String("owner", msg.AuthorName),
		slog.String("component", "ingest"))
	return true, nil
}
