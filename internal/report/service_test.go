package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"carledger/internal/core"
	applog "carledger/internal/log"
)

type stubSource struct {
	vehicles  []core.Vehicle
	err       error
	calls     int
	lastStart time.Time
	lastEnd   time.Time
}

func (s *stubSource) SoldVehiclesInRange(ctx context.Context, start, end time.Time) ([]core.Vehicle, error) {
	s.calls++
	s.lastStart, s.lastEnd = start, end
	return s.vehicles, s.err
}

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestAnnualQueriesUTCRange(t *testing.T) {
	source := &stubSource{}
	svc := NewService(source, testLogger())

	if _, err := svc.Annual(context.Background(), 2024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !source.lastStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", source.lastStart)
	}
	if !source.lastEnd.Equal(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("end = %v", source.lastEnd)
	}
}

func TestAnnualEmptyYear(t *testing.T) {
	svc := NewService(&stubSource{}, testLogger())

	data, err := svc.Annual(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Items) != 0 {
		t.Fatalf("items = %v, want none", data.Items)
	}
	if len(data.MonthlyBreakdown) != 12 {
		t.Fatalf("breakdown rows = %d, want 12 even with no sales", len(data.MonthlyBreakdown))
	}
}

func TestAnnualItemCountMatchesRollup(t *testing.T) {
	source := &stubSource{vehicles: []core.Vehicle{
		soldVehicle("9000", "12000", time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)),
		soldVehicle("7000", "7500", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)),
		soldVehicle("15000", "19000", time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)),
	}}
	svc := NewService(source, testLogger())

	data, err := svc.Annual(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sold := 0
	for _, row := range data.MonthlyBreakdown {
		sold += row.VehiclesSold
	}
	if sold != len(data.Items) {
		t.Fatalf("breakdown counts %d vehicles, items has %d", sold, len(data.Items))
	}
}

func TestAnnualIdempotent(t *testing.T) {
	source := &stubSource{vehicles: []core.Vehicle{
		soldVehicle("9000", "12000", time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)),
	}}
	source.vehicles[0].Expenses = []core.Expense{
		expense(core.CategoryRepair, "310.555"),
		expense(core.CategoryBrokerFee, "99.99"),
	}
	svc := NewService(source, testLogger())

	first, err := svc.Annual(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Annual(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("payloads diverge:\n%s\n%s", a, b)
	}
}

func TestAnnualStoreFailure(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	svc := NewService(source, testLogger())

	data, err := svc.Annual(context.Background(), 2024)
	if err == nil {
		t.Fatal("expected error")
	}
	if data != nil {
		t.Fatal("no partial payload may accompany a failure")
	}
}

func TestAnnualRejectsBadYear(t *testing.T) {
	source := &stubSource{}
	svc := NewService(source, testLogger())

	for _, year := range []int{0, -5, 999, 10000} {
		_, err := svc.Annual(context.Background(), year)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("year %d: expected ValidationError, got %v", year, err)
		}
		if verr.Field != "year" {
			t.Fatalf("year %d: ValidationError names %q", year, verr.Field)
		}
	}
	if source.calls != 0 {
		t.Fatalf("store queried %d times for invalid input", source.calls)
	}
}

func TestMonthlyRejectsBadMonth(t *testing.T) {
	source := &stubSource{}
	svc := NewService(source, testLogger())

	for _, month := range []int{0, 13, -1} {
		_, err := svc.Monthly(context.Background(), month, 2024)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("month %d: expected ValidationError, got %v", month, err)
		}
		if verr.Field != "month" {
			t.Fatalf("month %d: ValidationError names %q", month, verr.Field)
		}
	}
	if source.calls != 0 {
		t.Fatalf("store queried %d times for invalid input", source.calls)
	}
}

func TestMonthlyQueriesLocalRange(t *testing.T) {
	source := &stubSource{}
	svc := NewService(source, testLogger())

	if _, err := svc.Monthly(context.Background(), 2, 2024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !source.lastStart.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("start = %v", source.lastStart)
	}
	wantEnd := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
	if !source.lastEnd.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", source.lastEnd, wantEnd)
	}
}

func TestMonthlyKeepsRawSums(t *testing.T) {
	v := soldVehicle("10000", "15000", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	v.Expenses = []core.Expense{expense(core.CategoryRepair, "1500.555")}
	source := &stubSource{vehicles: []core.Vehicle{v}}
	svc := NewService(source, testLogger())

	data, err := svc.Monthly(context.Background(), 2, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(data.Items))
	}
	if !data.Items[0].TotalCost.Equal(d("11500.555")) {
		t.Fatalf("TotalCost = %s, want unrounded 11500.555", data.Items[0].TotalCost)
	}
}
