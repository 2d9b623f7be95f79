package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusAvailable VehicleStatus = "AVAILABLE"
	StatusSold      VehicleStatus = "SOLD"
)

const (
	CategoryRepair        ExpenseCategory = "REPAIR"
	CategoryBrokerFee     ExpenseCategory = "BROKER_FEE"
	CategoryTravel        ExpenseCategory = "TRAVEL"
	CategoryDocumentation ExpenseCategory = "DOCUMENTATION"
	CategoryOther         ExpenseCategory = "OTHER"
)

// DefaultProfitMargin is the target margin percent assigned when none is given.
const DefaultProfitMargin = 15

type (
	VehicleStatus   string
	ExpenseCategory string

	// Vehicle is one unit of inventory. A vehicle starts AVAILABLE
	// and transitions exactly once to SOLD.
	Vehicle struct {
		ID            string
		Make          string
		Model         string
		Year          int
		RegNumber     string
		VIN           string
		PurchasePrice decimal.Decimal
		PurchaseDate  time.Time
		Status        VehicleStatus
		SoldPrice     *decimal.Decimal
		SoldDate      *time.Time
		ProfitMargin  decimal.Decimal
		Images        []string
		Expenses      []Expense
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// Expense is a cost item owned by exactly one vehicle.
	Expense struct {
		ID          string
		VehicleID   string
		Description string
		Amount      decimal.Decimal
		Date        time.Time
		Category    ExpenseCategory
		IsPublic    bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// DealerProfile holds the dealer identity shown on reports and
	// verification pages.
	DealerProfile struct {
		ID          string
		CompanyName string
		Address     string
		Phone       string
		Email       string
		UpdatedAt   time.Time
	}
)

var (
	ErrEmptyMake        = errors.New("make is required")
	ErrEmptyModel       = errors.New("model is required")
	ErrInvalidYear      = errors.New("invalid year")
	ErrEmptyRegNumber   = errors.New("registration number is required")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("description is required")
	ErrInvalidCategory  = errors.New("invalid expense category")
	ErrInvalidMargin    = errors.New("profit margin must be between 0 and 100")
	ErrSoldBeforeBought = errors.New("sold date cannot precede purchase date")
	ErrAlreadySold      = errors.New("vehicle is already sold")
	ErrEmptyCompany     = errors.New("company name is required")
)

// Categories lists all valid expense categories in a stable order.
func Categories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryRepair,
		CategoryBrokerFee,
		CategoryTravel,
		CategoryDocumentation,
		CategoryOther,
	}
}

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryRepair, CategoryBrokerFee, CategoryTravel, CategoryDocumentation, CategoryOther:
		return true
	}
	return false
}

// DefaultPublic reports whether an expense of this category is publicly
// visible when the caller did not choose. Only repairs are public by default.
func (c ExpenseCategory) DefaultPublic() bool {
	return c == CategoryRepair
}

func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Make) == "" {
		return ErrEmptyMake
	}
	if strings.TrimSpace(v.Model) == "" {
		return ErrEmptyModel
	}
	if v.Year < 1900 || v.Year > time.Now().Year()+1 {
		return ErrInvalidYear
	}
	if strings.TrimSpace(v.RegNumber) == "" {
		return ErrEmptyRegNumber
	}
	if !v.PurchasePrice.IsPositive() {
		return ErrInvalidAmount
	}
	if v.PurchaseDate.IsZero() {
		return errors.New("purchase date is required")
	}
	if v.ProfitMargin.IsNegative() || v.ProfitMargin.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidMargin
	}
	switch v.Status {
	case StatusAvailable:
		if v.SoldPrice != nil || v.SoldDate != nil {
			return errors.New("available vehicle cannot carry sale data")
		}
	case StatusSold:
		if v.SoldPrice == nil || v.SoldDate == nil {
			return errors.New("sold vehicle requires sold price and sold date")
		}
		if !v.SoldPrice.IsPositive() {
			return ErrInvalidAmount
		}
		if v.SoldDate.Before(v.PurchaseDate) {
			return ErrSoldBeforeBought
		}
	default:
		return errors.New("invalid vehicle status")
	}
	return nil
}

// Label is the display name used on report lines.
func (v Vehicle) Label() string {
	return v.Make + " " + v.Model
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (p DealerProfile) Validate() error {
	if strings.TrimSpace(p.CompanyName) == "" {
		return ErrEmptyCompany
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return errors.New("invalid email address")
	}
	return nil
}
