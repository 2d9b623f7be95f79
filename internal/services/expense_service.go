package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carledger/internal/amqp"
	"carledger/internal/cache"
	"carledger/internal/core"
	applog "carledger/internal/log"
	"carledger/internal/storage"
)

// ExpenseService orchestrates expense writes. Every expense belongs to
// exactly one vehicle; writes mark the vehicle list cache stale because
// list payloads embed expenses.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher RecordSyncPublisher
	listCache cache.Cache[[]core.Vehicle]
	logger    *applog.Logger
}

func NewExpenseService(storage *storage.SQLiteRepository, publisher RecordSyncPublisher, listCache cache.Cache[[]core.Vehicle], logger *applog.Logger) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		listCache: listCache,
		logger:    logger.WithComponent(applog.ComponentExpense),
	}
}

func (s *ExpenseService) Create(ctx context.Context, vehicleID string, in ExpenseInput) (*core.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	// The owning vehicle must exist; a missing one surfaces as not found.
	if _, err := s.storage.GetVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}

	expense := &core.Expense{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		IsPublic:    in.isPublic(),
	}

	if err := s.storage.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, expense.ID, amqp.ActionUpsert)

	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldExpenseID, expense.ID,
		applog.FieldVehicleID, vehicleID,
		applog.FieldCategory, string(expense.Category),
		applog.FieldAmount, expense.Amount.String())
	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) Update(ctx context.Context, id string, in ExpenseInput) (*core.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	expense, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	expense.Description = in.Description
	expense.Amount = in.Amount
	expense.Date = in.Date
	expense.Category = in.Category
	expense.IsPublic = in.isPublic()

	if err := s.storage.UpdateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, id, amqp.ActionUpsert)

	s.logger.InfoContext(ctx, "Expense updated",
		applog.FieldExpenseID, id,
		applog.FieldVehicleID, expense.VehicleID)
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	expense, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, id, amqp.ActionDelete)

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldExpenseID, id,
		applog.FieldVehicleID, expense.VehicleID)
	return nil
}

func (s *ExpenseService) invalidateList() {
	if s.listCache != nil {
		s.listCache.Delete(vehicleListCacheKey)
	}
}

func (s *ExpenseService) publishSync(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordSyncMessage(amqp.EntityExpense, id, action)
	if err := s.publisher.PublishRecordSync(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldExpenseID, id,
			applog.FieldAction, action,
			applog.FieldError, err)
	}
}
