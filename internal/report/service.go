package report

import (
	"context"
	"fmt"
	"time"

	"carledger/internal/core"
	applog "carledger/internal/log"
)

// VehicleSource supplies the sold-vehicle records a report is computed
// from. Implementations must filter server-side: status SOLD, sold date
// within [start, end] inclusive, ordered by sold date ascending, with each
// vehicle's expenses attached.
type VehicleSource interface {
	SoldVehiclesInRange(ctx context.Context, start, end time.Time) ([]core.Vehicle, error)
}

// Service assembles reports from an explicitly injected record source.
// It holds no state between invocations; concurrent calls are independent.
type Service struct {
	source VehicleSource
	logger *applog.Logger
}

func NewService(source VehicleSource, logger *applog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.WithComponent(applog.ComponentReport),
	}
}

// AnnualData is the annual report payload: flat items plus the fixed
// 12-row monthly rollup.
type AnnualData struct {
	Items            []ReportItem       `json:"items"`
	MonthlyBreakdown []MonthlyBreakdown `json:"monthlyBreakdown"`
}

// MonthlyData is the legacy calendar-month payload: a flat item list with
// the unrounded arithmetic older consumers expect.
type MonthlyData struct {
	Items []ReportItem `json:"items"`
}

// ValidationError names the report parameter that was rejected, before any
// store query runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateYear(year int) error {
	if year < 1000 || year > 9999 {
		return &ValidationError{Field: "year", Reason: "must be a 4-digit year"}
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	return nil
}

// Annual builds the annual report for year. Sold vehicles are aggregated
// with cent rounding at every accumulation step and rolled up per month.
// Any store failure aborts the whole report; no partial payload is
// returned.
func (s *Service) Annual(ctx context.Context, year int) (*AnnualData, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	period := AnnualPeriod(year)
	vehicles, err := s.source.SoldVehiclesInRange(ctx, period.Start, period.End)
	if err != nil {
		s.logger.ErrorContext(ctx, "Annual report query failed",
			applog.FieldYear, year,
			applog.FieldError, err)
		return nil, fmt.Errorf("query sold vehicles: %w", err)
	}

	items := make([]ReportItem, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, buildItem(v, true))
	}

	s.logger.InfoContext(ctx, "Annual report assembled",
		applog.FieldYear, year,
		applog.FieldItemCount, len(items))

	return &AnnualData{
		Items:            items,
		MonthlyBreakdown: monthlyBreakdown(items),
	}, nil
}

// Monthly builds the calendar-month report. Retained for compatibility:
// unlike Annual it applies no rounding anywhere, and its period bounds are
// computed in server-local time (see MonthlyPeriod).
func (s *Service) Monthly(ctx context.Context, month, year int) (*MonthlyData, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	period := MonthlyPeriod(month, year)
	vehicles, err := s.source.SoldVehiclesInRange(ctx, period.Start, period.End)
	if err != nil {
		s.logger.ErrorContext(ctx, "Monthly report query failed",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		return nil, fmt.Errorf("query sold vehicles: %w", err)
	}

	items := make([]ReportItem, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, buildItem(v, false))
	}

	s.logger.InfoContext(ctx, "Monthly report assembled",
		applog.FieldYear, year,
		applog.FieldMonth, month,
		applog.FieldItemCount, len(items))

	return &MonthlyData{Items: items}, nil
}
