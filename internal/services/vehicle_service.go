package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carledger/internal/amqp"
	"carledger/internal/cache"
	"carledger/internal/core"
	applog "carledger/internal/log"
	"carledger/internal/storage"
)

// RecordSyncPublisher publishes record sync messages. *amqp.Client
// implements it; tests use a stub.
type RecordSyncPublisher interface {
	PublishRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error
}

const vehicleListCacheKey = "vehicles:all"

// VehicleService orchestrates vehicle writes across SQLite and AMQP.
// Local persistence is the source of truth; sync publishing is best
// effort and never fails the request.
type VehicleService struct {
	storage   *storage.SQLiteRepository
	publisher RecordSyncPublisher
	listCache cache.Cache[[]core.Vehicle]
	logger    *applog.Logger
}

func NewVehicleService(storage *storage.SQLiteRepository, publisher RecordSyncPublisher, listCache cache.Cache[[]core.Vehicle], logger *applog.Logger) *VehicleService {
	return &VehicleService{
		storage:   storage,
		publisher: publisher,
		listCache: listCache,
		logger:    logger.WithComponent(applog.ComponentVehicle),
	}
}

func (s *VehicleService) Create(ctx context.Context, in VehicleInput) (*core.Vehicle, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error; the UNIQUE constraint still
	// backstops concurrent creates.
	if _, err := s.storage.FindVehicleByRegNumber(ctx, in.RegNumber); err == nil {
		return nil, storage.ErrDuplicateRegNumber
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check registration number: %w", err)
	}

	margin := decimal.NewFromInt(core.DefaultProfitMargin)
	if in.ProfitMargin != nil {
		margin = *in.ProfitMargin
	}

	vehicle := &core.Vehicle{
		ID:            uuid.NewString(),
		Make:          in.Make,
		Model:         in.Model,
		Year:          in.Year,
		RegNumber:     in.RegNumber,
		VIN:           in.VIN,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
		Status:        core.StatusAvailable,
		ProfitMargin:  margin,
		Images:        in.Images,
	}

	if err := s.storage.CreateVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("save vehicle: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, amqp.EntityVehicle, vehicle.ID, amqp.ActionUpsert)

	s.logger.InfoContext(ctx, "Vehicle created",
		applog.FieldVehicleID, vehicle.ID,
		applog.FieldRegNumber, vehicle.RegNumber)
	return vehicle, nil
}

func (s *VehicleService) Get(ctx context.Context, id string) (*core.Vehicle, error) {
	return s.storage.GetVehicle(ctx, id)
}

// List returns all vehicles newest first, served from the TTL cache when
// warm. Any write through this service invalidates the cached list.
func (s *VehicleService) List(ctx context.Context) ([]core.Vehicle, error) {
	if s.listCache != nil {
		if vehicles, ok := s.listCache.Get(vehicleListCacheKey); ok {
			return vehicles, nil
		}
	}

	vehicles, err := s.storage.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	if s.listCache != nil {
		s.listCache.Set(vehicleListCacheKey, vehicles)
	}
	return vehicles, nil
}

func (s *VehicleService) Update(ctx context.Context, id string, in VehicleInput) (*core.Vehicle, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	vehicle, err := s.storage.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.RegNumber != vehicle.RegNumber {
		if other, err := s.storage.FindVehicleByRegNumber(ctx, in.RegNumber); err == nil && other.ID != id {
			return nil, storage.ErrDuplicateRegNumber
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("check registration number: %w", err)
		}
	}

	vehicle.Make = in.Make
	vehicle.Model = in.Model
	vehicle.Year = in.Year
	vehicle.RegNumber = in.RegNumber
	vehicle.VIN = in.VIN
	vehicle.PurchasePrice = in.PurchasePrice
	vehicle.PurchaseDate = in.PurchaseDate
	vehicle.Images = in.Images
	if in.ProfitMargin != nil {
		vehicle.ProfitMargin = *in.ProfitMargin
	}

	if err := s.storage.UpdateVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, amqp.EntityVehicle, id, amqp.ActionUpsert)

	s.logger.InfoContext(ctx, "Vehicle updated",
		applog.FieldVehicleID, id,
		applog.FieldRegNumber, vehicle.RegNumber)
	return vehicle, nil
}

// MarkSold flips a vehicle to SOLD. The transition happens exactly once;
// selling an already sold vehicle fails with core.ErrAlreadySold.
func (s *VehicleService) MarkSold(ctx context.Context, id string, in SoldInput) (*core.Vehicle, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	vehicle, err := s.storage.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SoldDate.Before(vehicle.PurchaseDate) {
		return nil, &ValidationError{Field: "soldDate", Reason: "cannot precede the purchase date"}
	}

	if err := s.storage.MarkVehicleSold(ctx, id, in.SoldPrice, in.SoldDate); err != nil {
		return nil, err
	}

	s.invalidateList()
	s.publishSync(ctx, amqp.EntityVehicle, id, amqp.ActionUpsert)

	s.logger.InfoContext(ctx, "Vehicle marked sold",
		applog.FieldVehicleID, id,
		applog.FieldSoldPrice, in.SoldPrice.String())

	return s.storage.GetVehicle(ctx, id)
}

// Delete removes the vehicle and its expenses, then publishes delete
// messages so the export drops the rows too.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	vehicle, err := s.storage.GetVehicle(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteVehicle(ctx, id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}

	s.invalidateList()
	s.publishSync(ctx, amqp.EntityVehicle, id, amqp.ActionDelete)
	for _, e := range vehicle.Expenses {
		s.publishSync(ctx, amqp.EntityExpense, e.ID, amqp.ActionDelete)
	}

	s.logger.InfoContext(ctx, "Vehicle deleted",
		applog.FieldVehicleID, id,
		applog.FieldRegNumber, vehicle.RegNumber,
		applog.FieldItemCount, len(vehicle.Expenses))
	return nil
}

// PublicExpenses returns the vehicle's publicly visible expenses, newest
// first, for the verification page.
func (s *VehicleService) PublicExpenses(ctx context.Context, vehicleID string) ([]core.Expense, error) {
	return s.storage.PublicExpenses(ctx, vehicleID)
}

func (s *VehicleService) invalidateList() {
	if s.listCache != nil {
		s.listCache.Delete(vehicleListCacheKey)
	}
}

func (s *VehicleService) publishSync(ctx context.Context, entity, id, action string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordSyncMessage(entity, id, action)
	if err := s.publisher.PublishRecordSync(ctx, msg); err != nil {
		// The local write already succeeded; the pending-sync sweep
		// picks the record up later.
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldEntity, entity,
			applog.FieldVehicleID, id,
			applog.FieldAction, action,
			applog.FieldError, err)
	}
}
