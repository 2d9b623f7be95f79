package http

import (
	"time"

	"github.com/shopspring/decimal"

	"carledger/internal/core"
)

type vehicleResponse struct {
	ID            string            `json:"id"`
	Make          string            `json:"make"`
	Model         string            `json:"model"`
	Year          int               `json:"year"`
	RegNumber     string            `json:"regNumber"`
	VIN           string            `json:"vin,omitempty"`
	PurchasePrice decimal.Decimal   `json:"purchasePrice"`
	PurchaseDate  time.Time         `json:"purchaseDate"`
	Status        string            `json:"status"`
	SoldPrice     *decimal.Decimal  `json:"soldPrice,omitempty"`
	SoldDate      *time.Time        `json:"soldDate,omitempty"`
	ProfitMargin  decimal.Decimal   `json:"profitMargin"`
	Images        []string          `json:"images"`
	Expenses      []expenseResponse `json:"expenses"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	VehicleID   string          `json:"vehicleId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	IsPublic    bool            `json:"isPublic"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type profileResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// verifyResponse is the public verification payload: a buyer-facing
// summary with only the publicly visible expenses.
type verifyResponse struct {
	Vehicle  verifyVehicle     `json:"vehicle"`
	Expenses []expenseResponse `json:"expenses"`
	Dealer   string            `json:"dealer"`
}

type verifyVehicle struct {
	ID        string   `json:"id"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	RegNumber string   `json:"regNumber"`
	Status    string   `json:"status"`
	Images    []string `json:"images"`
}

func toVehicleResponse(v core.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:            v.ID,
		Make:          v.Make,
		Model:         v.Model,
		Year:          v.Year,
		RegNumber:     v.RegNumber,
		VIN:           v.VIN,
		PurchasePrice: v.PurchasePrice,
		PurchaseDate:  v.PurchaseDate,
		Status:        string(v.Status),
		SoldPrice:     v.SoldPrice,
		SoldDate:      v.SoldDate,
		ProfitMargin:  v.ProfitMargin,
		Images:        imagesOrEmpty(v.Images),
		Expenses:      toExpenseResponses(v.Expenses),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toVehicleResponses(vehicles []core.Vehicle) []vehicleResponse {
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResponse(v))
	}
	return out
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		VehicleID:   e.VehicleID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		Category:    string(e.Category),
		IsPublic:    e.IsPublic,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toProfileResponse(p core.DealerProfile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		CompanyName: p.CompanyName,
		Address:     p.Address,
		Phone:       p.Phone,
		Email:       p.Email,
		UpdatedAt:   p.UpdatedAt,
	}
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
