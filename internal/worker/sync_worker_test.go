package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carledger/internal/amqp"
	"carledger/internal/core"
	"carledger/internal/export/memory"
	"carledger/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "carledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	store := memory.New()
	return NewSyncWorker(repo, store, 10), repo, store
}

func seedVehicle(t *testing.T, repo *storage.SQLiteRepository, regNumber string) *core.Vehicle {
	t.Helper()
	v := &core.Vehicle{
		ID:            uuid.NewString(),
		Make:          "Skoda",
		Model:         "Octavia",
		Year:          2020,
		RegNumber:     regNumber,
		PurchasePrice: decimal.NewFromInt(12000),
		PurchaseDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:        core.StatusAvailable,
		ProfitMargin:  decimal.NewFromInt(core.DefaultProfitMargin),
	}
	if err := repo.CreateVehicle(context.Background(), v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository, vehicleID string) *core.Expense {
	t.Helper()
	e := &core.Expense{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		Description: "Respray",
		Amount:      decimal.NewFromFloat(850.50),
		Date:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Category:    core.CategoryRepair,
		IsPublic:    true,
	}
	if err := repo.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func TestHandleSyncMessage_VehicleUpsert(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	v := seedVehicle(t, repo, "SYNC-1")

	msg := amqp.NewRecordSyncMessage(amqp.EntityVehicle, v.ID, amqp.ActionUpsert)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	got, ok := store.Vehicle(v.ID)
	if !ok {
		t.Fatal("vehicle not exported")
	}
	if got.RegNumber != "SYNC-1" {
		t.Errorf("exported reg number = %q, want SYNC-1", got.RegNumber)
	}

	pending, err := repo.PendingSyncVehicleIDs(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSyncVehicleIDs() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending vehicles after sync = %v, want none", pending)
	}
}

func TestHandleSyncMessage_ExpenseUpsert(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	v := seedVehicle(t, repo, "SYNC-2")
	e := seedExpense(t, repo, v.ID)

	msg := amqp.NewRecordSyncMessage(amqp.EntityExpense, e.ID, amqp.ActionUpsert)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	got, ok := store.Expense(e.ID)
	if !ok {
		t.Fatal("expense not exported")
	}
	if !got.Amount.Equal(decimal.NewFromFloat(850.50)) {
		t.Errorf("exported amount = %s, want 850.5", got.Amount)
	}
}

func TestHandleSyncMessage_Delete(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	v := seedVehicle(t, repo, "SYNC-3")

	upsert := amqp.NewRecordSyncMessage(amqp.EntityVehicle, v.ID, amqp.ActionUpsert)
	if err := w.HandleSyncMessage(ctx, upsert); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	del := amqp.NewRecordSyncMessage(amqp.EntityVehicle, v.ID, amqp.ActionDelete)
	if err := w.HandleSyncMessage(ctx, del); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := store.Vehicle(v.ID); ok {
		t.Error("vehicle still present in export after delete")
	}
}

func TestHandleSyncMessage_MissingRecordIsSkipped(t *testing.T) {
	w, _, store := newTestWorker(t)

	msg := amqp.NewRecordSyncMessage(amqp.EntityVehicle, uuid.NewString(), amqp.ActionUpsert)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v, want nil for missing record", err)
	}
	if vehicles, _ := store.Len(); vehicles != 0 {
		t.Errorf("exported vehicles = %d, want 0", vehicles)
	}
}

func TestHandleSyncMessage_UnknownEntity(t *testing.T) {
	w, _, _ := newTestWorker(t)

	msg := &amqp.RecordSyncMessage{Entity: "invoice", ID: "x", Action: amqp.ActionUpsert}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestStartupSyncCheck(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	v1 := seedVehicle(t, repo, "PEND-1")
	v2 := seedVehicle(t, repo, "PEND-2")
	e := seedExpense(t, repo, v1.ID)

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	vehicles, expenses := store.Len()
	if vehicles != 2 || expenses != 1 {
		t.Errorf("exported = %d vehicles, %d expenses; want 2, 1", vehicles, expenses)
	}
	if _, ok := store.Vehicle(v2.ID); !ok {
		t.Error("second vehicle not exported")
	}
	if _, ok := store.Expense(e.ID); !ok {
		t.Error("expense not exported")
	}

	for _, fetch := range []func(context.Context, int) ([]string, error){
		repo.PendingSyncVehicleIDs,
		repo.PendingSyncExpenseIDs,
	} {
		ids, err := fetch(ctx, 10)
		if err != nil {
			t.Fatalf("pending ids: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("pending ids after startup sync = %v, want none", ids)
		}
	}
}

func TestProcessPending_NoWorkIsNoop(t *testing.T) {
	w, _, store := newTestWorker(t)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if vehicles, expenses := store.Len(); vehicles != 0 || expenses != 0 {
		t.Errorf("exported = %d, %d; want 0, 0", vehicles, expenses)
	}
}
