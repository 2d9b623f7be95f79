package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"carledger/internal/core"
	"carledger/internal/services"
)

// apiDate accepts the two date shapes clients historically sent: plain
// "2006-01-02" and full RFC 3339 timestamps. Anything else is an error,
// never a zero value.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", s)
}

// apiAmount accepts money either as a JSON number or as a string with a
// dot or comma decimal separator, which is what form-driven clients send.
type apiAmount struct {
	decimal.Decimal
}

func (a *apiAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := core.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("unrecognized amount %q", s)
		}
		a.Decimal = d
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

type vehicleRequest struct {
	Make          string           `json:"make"`
	Model         string           `json:"model"`
	Year          int              `json:"year"`
	RegNumber     string           `json:"regNumber"`
	VIN           string           `json:"vin"`
	PurchasePrice apiAmount        `json:"purchasePrice"`
	PurchaseDate  apiDate          `json:"purchaseDate"`
	ProfitMargin  *decimal.Decimal `json:"profitMargin"`
	Images        []string         `json:"images"`
}

func (req vehicleRequest) toInput() services.VehicleInput {
	return services.VehicleInput{
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		RegNumber:     req.RegNumber,
		VIN:           req.VIN,
		PurchasePrice: req.PurchasePrice.Decimal,
		PurchaseDate:  req.PurchaseDate.Time,
		ProfitMargin:  req.ProfitMargin,
		Images:        req.Images,
	}
}

type soldRequest struct {
	SoldPrice apiAmount `json:"soldPrice"`
	SoldDate  apiDate   `json:"soldDate"`
}

type expenseRequest struct {
	Description string    `json:"description"`
	Amount      apiAmount `json:"amount"`
	Date        apiDate   `json:"date"`
	Category    string    `json:"category"`
	IsPublic    *bool     `json:"isPublic"`
}

func (req expenseRequest) toInput() services.ExpenseInput {
	return services.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount.Decimal,
		Date:        req.Date.Time,
		Category:    core.ExpenseCategory(req.Category),
		IsPublic:    req.IsPublic,
	}
}

type profileRequest struct {
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// decodeBody parses a JSON request body into dst. Any malformed field
// rejects the whole request; nothing is silently coerced.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
