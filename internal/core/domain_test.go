package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validVehicle() Vehicle {
	return Vehicle{
		ID:            "v-1",
		Make:          "Toyota",
		Model:         "Corolla",
		Year:          2019,
		RegNumber:     "ABC-123",
		PurchasePrice: decimal.NewFromInt(10000),
		PurchaseDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:        StatusAvailable,
		ProfitMargin:  decimal.NewFromInt(DefaultProfitMargin),
	}
}

func TestVehicleValidate(t *testing.T) {
	soldPrice := decimal.NewFromInt(15000)
	soldDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	earlyDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid available", func(t *testing.T) {
		if err := validVehicle().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid sold", func(t *testing.T) {
		v := validVehicle()
		v.Status = StatusSold
		v.SoldPrice = &soldPrice
		v.SoldDate = &soldDate
		if err := v.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("sold without sale data", func(t *testing.T) {
		v := validVehicle()
		v.Status = StatusSold
		if err := v.Validate(); err == nil {
			t.Fatal("expected error for SOLD vehicle without price and date")
		}
	})

	t.Run("available with sale data", func(t *testing.T) {
		v := validVehicle()
		v.SoldPrice = &soldPrice
		if err := v.Validate(); err == nil {
			t.Fatal("expected error for AVAILABLE vehicle with sold price")
		}
	})

	t.Run("sold before purchase", func(t *testing.T) {
		v := validVehicle()
		v.Status = StatusSold
		v.SoldPrice = &soldPrice
		v.SoldDate = &earlyDate
		if err := v.Validate(); !errors.Is(err, ErrSoldBeforeBought) {
			t.Fatalf("expected ErrSoldBeforeBought, got %v", err)
		}
	})

	t.Run("field errors", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Vehicle)
			want   error
		}{
			{"empty make", func(v *Vehicle) { v.Make = " " }, ErrEmptyMake},
			{"empty model", func(v *Vehicle) { v.Model = "" }, ErrEmptyModel},
			{"year too old", func(v *Vehicle) { v.Year = 1850 }, ErrInvalidYear},
			{"year in future", func(v *Vehicle) { v.Year = time.Now().Year() + 2 }, ErrInvalidYear},
			{"empty reg", func(v *Vehicle) { v.RegNumber = "" }, ErrEmptyRegNumber},
			{"zero price", func(v *Vehicle) { v.PurchasePrice = decimal.Zero }, ErrInvalidAmount},
			{"margin over 100", func(v *Vehicle) { v.ProfitMargin = decimal.NewFromInt(101) }, ErrInvalidMargin},
			{"negative margin", func(v *Vehicle) { v.ProfitMargin = decimal.NewFromInt(-1) }, ErrInvalidMargin},
		}
		for _, tc := range cases {
			v := validVehicle()
			tc.mutate(&v)
			if err := v.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}
	})
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		VehicleID:   "v-1",
		Description: "New brake pads",
		Amount:      decimal.NewFromFloat(249.90),
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Category:    CategoryRepair,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"empty description", func(e *Expense) { e.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"bad category", func(e *Expense) { e.Category = "FUEL" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		e := valid
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCategoryDefaultPublic(t *testing.T) {
	for _, c := range Categories() {
		want := c == CategoryRepair
		if got := c.DefaultPublic(); got != want {
			t.Fatalf("%s: DefaultPublic() = %v, want %v", c, got, want)
		}
	}
}

func TestVehicleLabel(t *testing.T) {
	v := Vehicle{Make: "Honda", Model: "Civic"}
	if got := v.Label(); got != "Honda Civic" {
		t.Fatalf("Label() = %q", got)
	}
}
