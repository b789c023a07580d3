package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/activitybank/archiver/telemetry"
)

// Report is the final tally of one reconciliation run.
type Report struct {
	Scanned  int
	Archived int
}

// Reconciler is the historical-backfill path: it pages a channel's entire
// message history and applies the same per-item protocol as live ingestion.
// Idempotency is keyed on (server, message id), so re-running after any
// failure (including a crash mid-run) archives only items not already in the
// ledger. No checkpoint state is kept.
type Reconciler struct {
	Registry  *Registry
	History   History
	Notifier  Notifier
	Pipeline  *Handler
	BatchSize int
}

// Reconcile backfills channelID's history. The requester must be the guild
// owner (ErrPermissionDenied otherwise) and channelID must be the configured
// upload channel (ErrNotConfigured otherwise); neither failure starts a
// traversal.
//
// Pages are fetched newest-first with the oldest-seen message id as the next
// page's "before" bound; within each page items are processed oldest-first so
// side effects land in posting order. A per-item failure is logged and skipped;
// only a failed page fetch aborts the run. Traversal ends on an empty or short
// page.
func (r *Reconciler) Reconcile(ctx context.Context, guildID, channelID, requesterID string) (Report, error) {
	var report Report

	ownerID, err := r.Registry.Owners.Owner(ctx, guildID)
	if err != nil {
		return report, fmt.Errorf("resolve guild owner: %w", err)
	}
	if requesterID != ownerID {
		return report, ErrPermissionDenied
	}
	srv, err := r.Registry.Authorized(ctx, guildID, channelID)
	if err != nil {
		return report, err
	}

	runID := uuid.NewString()
	logger := slog.Default().With(
		slog.String("run_id", runID),
		slog.String("guild_id", guildID),
		slog.String("channel_id", channelID),
		slog.String("component", "sync"))
	logger.Info("sync starting", slog.Int("batch_size", r.batchSize()))
	telemetry.IncSyncRuns()

	if err := r.Notifier.Say(ctx, channelID, "🔄 Syncing videos... this may take a while."); err != nil {
		logger.Warn("sync start notice failed", slog.Any("err", err))
	}

	before := ""
	for {
		page, err := r.History.FetchPage(ctx, channelID, r.batchSize(), before)
		if err != nil {
			logger.Error("history page fetch failed", slog.Any("err", err), slog.Int("scanned", report.Scanned))
			return report, fmt.Errorf("fetch history page: %w", err)
		}
		if len(page) == 0 {
			break
		}
		// Pages arrive newest-first; the page's last entry is its oldest
		// message and becomes the cursor for the next fetch.
		before = page[len(page)-1].ID

		for i := len(page) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			msg := page[i]
			report.Scanned++
			telemetry.IncSyncScanned()

			att, ok := firstVideoAttachment(msg)
			if !ok {
				continue
			}
			archived, err := r.Pipeline.archiveItem(ctx, srv.ID, msg, att)
			if err != nil {
				// Non-fatal: the run continues, the item just doesn't count.
				logger.Warn("failed to sync a message", slog.Any("err", err), slog.String("message_id", msg.ID))
				telemetry.IncSyncItemFailed()
				continue
			}
			if archived {
				report.Archived++
				telemetry.IncSyncArchived()
			}
		}

		if len(page) < r.batchSize() {
			break
		}
	}

	logger.Info("sync complete", slog.Int("scanned", report.Scanned), slog.Int("archived", report.Archived))
	done := fmt.Sprintf("✅ Sync complete! Scanned %d messages, uploaded %d new videos.", report.Scanned, report.Archived)
	if err := r.Notifier.Say(ctx, channelID, done); err != nil {
		logger.Warn("sync completion notice failed", slog.Any("err", err))
	}
	return report, nil
}

func (r *Reconciler) batchSize() int {
	if r.BatchSize > 0 {
		return r.BatchSize
	}
	return 100
}
