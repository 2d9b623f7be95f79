package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "carledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newVehicle(regNumber string) *core.Vehicle {
	return &core.Vehicle{
		ID:            uuid.NewString(),
		Make:          "Toyota",
		Model:         "Corolla",
		Year:          2019,
		RegNumber:     regNumber,
		PurchasePrice: decimal.NewFromInt(10000),
		PurchaseDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:        core.StatusAvailable,
		ProfitMargin:  decimal.NewFromInt(core.DefaultProfitMargin),
	}
}

func newExpense(vehicleID string, amount string, date time.Time) *core.Expense {
	return &core.Expense{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		Description: "brake pads",
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Category:    core.CategoryRepair,
		IsPublic:    true,
	}
}

func TestVehicleRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("RT-100")
	v.VIN = "WVWZZZ1JZXW000001"
	v.Images = []string{"front.jpg", "rear.jpg"}
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RegNumber != "RT-100" || got.VIN != v.VIN || got.Status != core.StatusAvailable {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.PurchasePrice.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("purchase price = %s", got.PurchasePrice)
	}
	if len(got.Images) != 2 {
		t.Fatalf("images = %v", got.Images)
	}
	if got.SoldPrice != nil || got.SoldDate != nil {
		t.Fatal("fresh vehicle must carry no sale data")
	}
}

func TestDuplicateRegNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateVehicle(ctx, newVehicle("DUP-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.CreateVehicle(ctx, newVehicle("DUP-1"))
	if !errors.Is(err, ErrDuplicateRegNumber) {
		t.Fatalf("expected ErrDuplicateRegNumber, got %v", err)
	}

	// Registration numbers are case-sensitive: different case is a
	// different vehicle.
	if err := repo.CreateVehicle(ctx, newVehicle("dup-1")); err != nil {
		t.Fatalf("case-variant create: %v", err)
	}
}

func TestMarkVehicleSold(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("MS-1")
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}

	soldDate := time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC)
	if err := repo.MarkVehicleSold(ctx, v.ID, decimal.NewFromInt(15000), soldDate); err != nil {
		t.Fatalf("mark sold: %v", err)
	}

	got, err := repo.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != core.StatusSold {
		t.Fatalf("status = %s", got.Status)
	}
	if got.SoldPrice == nil || !got.SoldPrice.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("sold price = %v", got.SoldPrice)
	}
	if got.SoldDate == nil || !got.SoldDate.Equal(soldDate) {
		t.Fatalf("sold date = %v", got.SoldDate)
	}

	// The transition is one-way.
	err = repo.MarkVehicleSold(ctx, v.ID, decimal.NewFromInt(16000), soldDate)
	if !errors.Is(err, core.ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold, got %v", err)
	}

	err = repo.MarkVehicleSold(ctx, "missing", decimal.NewFromInt(1), soldDate)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteVehicleCascadesExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("DEL-1")
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	e := newExpense(v.ID, "120.50", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err := repo.CreateExpense(ctx, e); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := repo.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetVehicle(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("vehicle still present: %v", err)
	}
	if _, err := repo.GetExpense(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expense survived vehicle deletion: %v", err)
	}
}

func TestSoldVehiclesInRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sell := func(reg string, soldDate time.Time) string {
		v := newVehicle(reg)
		if err := repo.CreateVehicle(ctx, v); err != nil {
			t.Fatalf("create %s: %v", reg, err)
		}
		if err := repo.MarkVehicleSold(ctx, v.ID, decimal.NewFromInt(15000), soldDate); err != nil {
			t.Fatalf("sell %s: %v", reg, err)
		}
		return v.ID
	}

	// One AVAILABLE vehicle that must never surface in report queries.
	if err := repo.CreateVehicle(ctx, newVehicle("AVL-1")); err != nil {
		t.Fatalf("create available: %v", err)
	}

	boundary := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	midYear := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	nextYear := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	boundaryID := sell("SLD-BOUND", boundary)
	midID := sell("SLD-MID", midYear)
	sell("SLD-NEXT", nextYear)

	e := newExpense(midID, "250.00", midYear)
	if err := repo.CreateExpense(ctx, e); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := repo.SoldVehiclesInRange(ctx, start, boundary)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(got))
	}
	// Ascending by sold date; inclusive upper bound captures the
	// last-second sale.
	if got[0].ID != midID || got[1].ID != boundaryID {
		t.Fatalf("unexpected order: %s, %s", got[0].RegNumber, got[1].RegNumber)
	}
	if len(got[0].Expenses) != 1 {
		t.Fatalf("expenses not preloaded: %+v", got[0].Expenses)
	}

	// The 2025 window must not see the boundary sale.
	got, err = repo.SoldVehiclesInRange(ctx,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].RegNumber != "SLD-NEXT" {
		t.Fatalf("2025 window: %+v", got)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("EXP-1")
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	e := newExpense(v.ID, "1500.555", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if err := repo.CreateExpense(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Sub-cent precision survives storage untouched.
	if !got.Amount.Equal(decimal.RequireFromString("1500.555")) {
		t.Fatalf("amount = %s", got.Amount)
	}
	if !got.IsPublic {
		t.Fatal("is_public lost")
	}

	got.Description = "full respray"
	got.IsPublic = false
	if err := repo.UpdateExpense(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := repo.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if again.Description != "full respray" || again.IsPublic {
		t.Fatalf("update not persisted: %+v", again)
	}

	if err := repo.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetExpense(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublicExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("PUB-1")
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	older := newExpense(v.ID, "100", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := newExpense(v.ID, "200", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	private := newExpense(v.ID, "300", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	private.IsPublic = false
	for _, e := range []*core.Expense{older, newer, private} {
		if err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	got, err := repo.PublicExpenses(ctx, v.ID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d expenses, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatal("expected newest-first ordering")
	}
}

func TestDealerProfile(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetDealerProfile(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty table, got %v", err)
	}

	p := &core.DealerProfile{ID: uuid.NewString(), CompanyName: "Bitgard"}
	if err := repo.SaveDealerProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetDealerProfile(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompanyName != "Bitgard" {
		t.Fatalf("company = %q", got.CompanyName)
	}

	got.Address = "1 Harbour Rd"
	if err := repo.SaveDealerProfile(ctx, got); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again, err := repo.GetDealerProfile(ctx)
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if again.ID != got.ID || again.Address != "1 Harbour Rd" {
		t.Fatalf("upsert mismatch: %+v", again)
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVehicle("SYNC-1")
	if err := repo.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := repo.PendingSyncVehicleIDs(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(ids) != 1 || ids[0] != v.ID {
		t.Fatalf("pending ids = %v", ids)
	}

	if err := repo.MarkVehicleSynced(ctx, v.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	ids, err = repo.PendingSyncVehicleIDs(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("pending ids after sync = %v", ids)
	}

	// Any update flags the record pending again.
	v2, err := repo.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	v2.Model = "Corolla Touring"
	if err := repo.UpdateVehicle(ctx, v2); err != nil {
		t.Fatalf("update: %v", err)
	}
	ids, err = repo.PendingSyncVehicleIDs(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("pending ids after update = %v", ids)
	}
}
