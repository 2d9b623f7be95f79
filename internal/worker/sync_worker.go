package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"carledger/internal/amqp"
	"carledger/internal/export"
	"carledger/internal/storage"
)

// SyncWorker mirrors dealership records from SQLite into the audit export.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	exporter  export.RecordExporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter export.RecordExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
// The current record state is always read back from storage, so stale
// or replayed messages converge on the latest version.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"entity", msg.Entity,
		"id", msg.ID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDelete {
		return w.handleDelete(ctx, msg)
	}

	switch msg.Entity {
	case amqp.EntityVehicle:
		return w.syncVehicle(ctx, msg.ID)
	case amqp.EntityExpense:
		return w.syncExpense(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown entity: %s", msg.Entity)
	}
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	var err error
	switch msg.Entity {
	case amqp.EntityVehicle:
		err = w.exporter.DeleteVehicle(ctx, msg.ID)
	case amqp.EntityExpense:
		err = w.exporter.DeleteExpense(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown entity: %s", msg.Entity)
	}
	if err != nil {
		return fmt.Errorf("delete %s %s from export: %w", msg.Entity, msg.ID, err)
	}

	slog.InfoContext(ctx, "Removed record from export",
		"entity", msg.Entity,
		"id", msg.ID)
	return nil
}

func (w *SyncWorker) syncVehicle(ctx context.Context, id string) error {
	vehicle, err := w.storage.GetVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between publish and consume. The delete message
			// will clear the export row.
			slog.WarnContext(ctx, "Vehicle no longer exists, skipping sync", "id", id)
			return nil
		}
		return fmt.Errorf("get vehicle from storage: %w", err)
	}

	ref, err := w.exporter.UpsertVehicle(ctx, *vehicle)
	if err != nil {
		return fmt.Errorf("export vehicle: %w", err)
	}

	if err := w.storage.MarkVehicleSynced(ctx, id); err != nil {
		// The export itself succeeded; the pending flag stays set and
		// the next sweep retries the bookkeeping.
		slog.WarnContext(ctx, "Failed to mark vehicle as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced vehicle to export",
		"id", id,
		"reg_number", vehicle.RegNumber,
		"export_ref", ref)
	return nil
}

func (w *SyncWorker) syncExpense(ctx context.Context, id string) error {
	expense, err := w.storage.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Expense no longer exists, skipping sync", "id", id)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.exporter.UpsertExpense(ctx, *expense)
	if err != nil {
		return fmt.Errorf("export expense: %w", err)
	}

	if err := w.storage.MarkExpenseSynced(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to mark expense as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced expense to export",
		"id", id,
		"vehicle_id", expense.VehicleID,
		"export_ref", ref)
	return nil
}

// ProcessPending sweeps records that haven't been exported yet. This is a
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck sweeps pending records at worker startup with a larger
// batch, recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	vehicleIDs, err := w.storage.PendingSyncVehicleIDs(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending vehicles for startup check: %w", err)
	}
	expenseIDs, err := w.storage.PendingSyncExpenseIDs(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}

	if len(vehicleIDs) == 0 && len(expenseIDs) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"vehicles", len(vehicleIDs),
		"expenses", len(expenseIDs))

	synced, failed := w.syncBatch(ctx, vehicleIDs, expenseIDs)

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(vehicleIDs)+len(expenseIDs),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) processPendingBatch(ctx context.Context, limit int) error {
	vehicleIDs, err := w.storage.PendingSyncVehicleIDs(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending vehicles: %w", err)
	}
	expenseIDs, err := w.storage.PendingSyncExpenseIDs(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}

	if len(vehicleIDs) == 0 && len(expenseIDs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records",
		"vehicles", len(vehicleIDs),
		"expenses", len(expenseIDs))

	w.syncBatch(ctx, vehicleIDs, expenseIDs)
	return nil
}

func (w *SyncWorker) syncBatch(ctx context.Context, vehicleIDs, expenseIDs []string) (synced, failed int) {
	for _, id := range vehicleIDs {
		if ctx.Err() != nil {
			return synced, failed
		}
		if err := w.syncVehicle(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync vehicle", "id", id, "error", err)
			failed++
			continue
		}
		synced++
	}
	for _, id := range expenseIDs {
		if ctx.Err() != nil {
			return synced, failed
		}
		if err := w.syncExpense(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", id, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed
}
