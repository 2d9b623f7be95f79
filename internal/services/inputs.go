package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carledger/internal/core"
)

// ValidationError rejects one named input field. Callers surface the
// field so API clients know what to fix; nothing is silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// VehicleInput carries the caller-editable vehicle fields. Sale state is
// never set through it; MarkSold owns that transition.
type VehicleInput struct {
	Make          string
	Model         string
	Year          int
	RegNumber     string
	VIN           string
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
	ProfitMargin  *decimal.Decimal
	Images        []string
}

func (in VehicleInput) validate() error {
	if strings.TrimSpace(in.Make) == "" {
		return &ValidationError{Field: "make", Reason: "is required"}
	}
	if strings.TrimSpace(in.Model) == "" {
		return &ValidationError{Field: "model", Reason: "is required"}
	}
	if in.Year < 1900 || in.Year > time.Now().Year()+1 {
		return &ValidationError{Field: "year", Reason: "is out of range"}
	}
	if strings.TrimSpace(in.RegNumber) == "" {
		return &ValidationError{Field: "regNumber", Reason: "is required"}
	}
	if !in.PurchasePrice.IsPositive() {
		return &ValidationError{Field: "purchasePrice", Reason: "must be positive"}
	}
	if in.PurchaseDate.IsZero() {
		return &ValidationError{Field: "purchaseDate", Reason: "is required"}
	}
	if in.ProfitMargin != nil &&
		(in.ProfitMargin.IsNegative() || in.ProfitMargin.GreaterThan(decimal.NewFromInt(100))) {
		return &ValidationError{Field: "profitMargin", Reason: "must be between 0 and 100"}
	}
	return nil
}

// SoldInput records the one-way AVAILABLE to SOLD transition.
type SoldInput struct {
	SoldPrice decimal.Decimal
	SoldDate  time.Time
}

func (in SoldInput) validate() error {
	if !in.SoldPrice.IsPositive() {
		return &ValidationError{Field: "soldPrice", Reason: "must be positive"}
	}
	if in.SoldDate.IsZero() {
		return &ValidationError{Field: "soldDate", Reason: "is required"}
	}
	return nil
}

// ExpenseInput carries the caller-editable expense fields. A nil IsPublic
// defers to the category default: repairs are public, everything else is
// internal.
type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Category    core.ExpenseCategory
	IsPublic    *bool
}

func (in ExpenseInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	if len(in.Description) > 200 {
		return &ValidationError{Field: "description", Reason: "too long (max 200 characters)"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if !in.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "is not a known category"}
	}
	return nil
}

// isPublic resolves the visibility flag, falling back to the category
// default when the caller left it unset.
func (in ExpenseInput) isPublic() bool {
	if in.IsPublic != nil {
		return *in.IsPublic
	}
	return in.Category.DefaultPublic()
}

// ProfileInput carries the editable dealer profile fields.
type ProfileInput struct {
	CompanyName string
	Address     string
	Phone       string
	Email       string
}

func (in ProfileInput) validate() error {
	if strings.TrimSpace(in.CompanyName) == "" {
		return &ValidationError{Field: "companyName", Reason: "is required"}
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}
