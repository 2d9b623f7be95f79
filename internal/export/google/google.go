package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"carledger/internal/core"
	ports "carledger/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base worksheet names without year (e.g. "Vehicles"); code prefixes
	// the record's year, so each calendar year gets its own tab.
	vehiclesBase string
	expensesBase string
}

var _ ports.RecordExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: VEHICLES_SHEET_NAME (default "Vehicles"),
// EXPENSES_SHEET_NAME (default "Expenses").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	vehiclesBase := strings.TrimSpace(os.Getenv("VEHICLES_SHEET_NAME"))
	if vehiclesBase == "" {
		vehiclesBase = "Vehicles"
	}
	expensesBase := strings.TrimSpace(os.Getenv("EXPENSES_SHEET_NAME"))
	if expensesBase == "" {
		expensesBase = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		vehiclesBase:  vehiclesBase,
		expensesBase:  expensesBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

func yearPrefixedName(base string, year int) string {
	return fmt.Sprintf("%d %s", year, strings.TrimSpace(base))
}

func (c *Client) vehicleSheetName(year int) string { return yearPrefixedName(c.vehiclesBase, year) }
func (c *Client) expenseSheetName(year int) string { return yearPrefixedName(c.expensesBase, year) }

// UpsertVehicle writes the vehicle row into the worksheet for its
// acquisition year, replacing an existing row with the same ID.
func (c *Client) UpsertVehicle(ctx context.Context, v core.Vehicle) (string, error) {
	if err := v.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	soldPrice := ""
	if v.SoldPrice != nil {
		soldPrice = v.SoldPrice.StringFixed(2)
	}
	soldDate := ""
	if v.SoldDate != nil {
		soldDate = v.SoldDate.UTC().Format(time.RFC3339)
	}

	row := []any{
		v.ID,
		v.RegNumber,
		v.Make,
		v.Model,
		v.Year,
		string(v.Status),
		v.PurchasePrice.StringFixed(2),
		v.PurchaseDate.UTC().Format(time.RFC3339),
		soldPrice,
		soldDate,
	}
	return c.upsertRow(ctx, c.vehicleSheetName(v.PurchaseDate.Year()), v.ID, row)
}

// UpsertExpense writes the expense row into the worksheet for its
// expense year, replacing an existing row with the same ID.
func (c *Client) UpsertExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []any{
		e.ID,
		e.VehicleID,
		e.Date.UTC().Format(time.RFC3339),
		e.Description,
		string(e.Category),
		e.Amount.StringFixed(2),
		e.IsPublic,
	}
	return c.upsertRow(ctx, c.expenseSheetName(e.Date.Year()), e.ID, row)
}

// DeleteVehicle clears the vehicle's row in the current year's worksheet.
// Rows in prior-year worksheets are left as historical record.
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.clearRow(ctx, c.vehicleSheetName(time.Now().Year()), id)
}

// DeleteExpense clears the expense's row in the current year's worksheet.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.clearRow(ctx, c.expenseSheetName(time.Now().Year()), id)
}

// upsertRow finds the row whose column A holds id, updates it in place,
// or appends after the last used row.
func (c *Client) upsertRow(ctx context.Context, sheetName, id string, row []any) (string, error) {
	targetRow, found, err := c.findRowByID(ctx, sheetName, id)
	if err != nil {
		return "", err
	}
	if !found {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheetName)).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheetName, err)
		}
		targetRow = len(resp.Values) + 1
	}

	endCol := columnLetter(len(row))
	dataRange := fmt.Sprintf("%s!A%d:%s%d", sheetName, targetRow, endCol, targetRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

func (c *Client) clearRow(ctx context.Context, sheetName, id string) error {
	targetRow, found, err := c.findRowByID(ctx, sheetName, id)
	if err != nil {
		return err
	}
	if !found {
		// Already absent, nothing to do.
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:Z%d", sheetName, targetRow, targetRow)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	return nil
}

func (c *Client) findRowByID(ctx context.Context, sheetName, id string) (int, bool, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// columnLetter converts a 1-based column count to its A1-notation letter.
// Only single-letter columns are needed for our row widths.
func columnLetter(n int) string {
	return string(rune('A' + n - 1))
}
