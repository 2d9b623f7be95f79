package export

import (
	"context"

	"carledger/internal/core"
)

// RecordExporter mirrors dealership records into an external audit sheet.
// Upserts are keyed by record ID so replayed messages converge on the
// latest state.
type RecordExporter interface {
	UpsertVehicle(ctx context.Context, v core.Vehicle) (rowRef string, err error)
	UpsertExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
	DeleteVehicle(ctx context.Context, id string) error
	DeleteExpense(ctx context.Context, id string) error
}
