package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"carledger/internal/core"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateRegNumber = errors.New("registration number already exists")
)

// timeLayout is a fixed-width UTC format so lexical comparison in SQL
// matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// ---- vehicles ----

const vehicleColumns = `id, make, model, year, reg_number, vin, purchase_price,
	purchase_date, status, sold_price, sold_date, profit_margin, images,
	created_at, updated_at`

func (r *SQLiteRepository) CreateVehicle(ctx context.Context, v *core.Vehicle) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	images, err := json.Marshal(imagesOrEmpty(v.Images))
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, make, model, year, reg_number, vin,
			purchase_price, purchase_date, status, profit_margin, images,
			sync_pending, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		v.ID, v.Make, v.Model, v.Year, v.RegNumber, v.VIN,
		v.PurchasePrice.String(), formatTime(v.PurchaseDate), string(v.Status),
		v.ProfitMargin.String(), string(images),
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	if isUniqueViolation(err, "vehicles.reg_number") {
		return ErrDuplicateRegNumber
	}
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetVehicle(ctx context.Context, id string) (*core.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if err != nil {
		return nil, err
	}

	expenses, err := r.expensesForVehicles(ctx, []string{v.ID})
	if err != nil {
		return nil, err
	}
	v.Expenses = expenses[v.ID]
	return v, nil
}

func (r *SQLiteRepository) FindVehicleByRegNumber(ctx context.Context, regNumber string) (*core.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE reg_number = ?`, regNumber)
	return scanVehicle(row)
}

// ListVehicles returns all vehicles newest first, expenses attached.
func (r *SQLiteRepository) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	return r.collectVehicles(ctx, rows)
}

// SoldVehiclesInRange implements the report engine's record-source
// contract: SOLD vehicles whose sold date falls inside [start, end]
// inclusive, sold date ascending, expenses preloaded. Filtering happens in
// the query, not in Go.
func (r *SQLiteRepository) SoldVehiclesInRange(ctx context.Context, start, end time.Time) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vehicleColumns+` FROM vehicles
		WHERE status = ? AND sold_date IS NOT NULL AND sold_date >= ? AND sold_date <= ?
		ORDER BY sold_date ASC, id`,
		string(core.StatusSold), formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("query sold vehicles: %w", err)
	}
	defer rows.Close()

	return r.collectVehicles(ctx, rows)
}

func (r *SQLiteRepository) UpdateVehicle(ctx context.Context, v *core.Vehicle) error {
	v.UpdatedAt = time.Now().UTC()

	images, err := json.Marshal(imagesOrEmpty(v.Images))
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	var soldPrice, soldDate any
	if v.SoldPrice != nil {
		soldPrice = v.SoldPrice.String()
	}
	if v.SoldDate != nil {
		soldDate = formatTime(*v.SoldDate)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE vehicles SET make = ?, model = ?, year = ?, reg_number = ?,
			vin = ?, purchase_price = ?, purchase_date = ?, status = ?,
			sold_price = ?, sold_date = ?, profit_margin = ?, images = ?,
			sync_pending = 1, updated_at = ?
		WHERE id = ?`,
		v.Make, v.Model, v.Year, v.RegNumber, v.VIN,
		v.PurchasePrice.String(), formatTime(v.PurchaseDate), string(v.Status),
		soldPrice, soldDate, v.ProfitMargin.String(), string(images),
		formatTime(v.UpdatedAt), v.ID)
	if isUniqueViolation(err, "vehicles.reg_number") {
		return ErrDuplicateRegNumber
	}
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireRow(res)
}

// MarkVehicleSold flips an AVAILABLE vehicle to SOLD in one statement so
// the price and date land atomically. A vehicle never leaves SOLD again.
func (r *SQLiteRepository) MarkVehicleSold(ctx context.Context, id string, soldPrice decimal.Decimal, soldDate time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vehicles SET status = ?, sold_price = ?, sold_date = ?,
			sync_pending = 1, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusSold), soldPrice.String(), formatTime(soldDate),
		formatTime(time.Now()), id, string(core.StatusAvailable))
	if err != nil {
		return fmt.Errorf("mark vehicle sold: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish a missing vehicle from one already sold.
		if _, err := r.GetVehicle(ctx, id); err != nil {
			return err
		}
		return core.ErrAlreadySold
	}
	return nil
}

// DeleteVehicle removes the vehicle and, by ownership, all its expenses.
func (r *SQLiteRepository) DeleteVehicle(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE vehicle_id = ?`, id); err != nil {
		return fmt.Errorf("delete vehicle expenses: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ---- expenses ----

const expenseColumns = `id, vehicle_id, description, amount, date, category,
	is_public, created_at, updated_at`

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, vehicle_id, description, amount, date,
			category, is_public, sync_pending, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		e.ID, e.VehicleID, e.Description, e.Amount.String(), formatTime(e.Date),
		string(e.Category), boolToInt(e.IsPublic),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	return scanExpense(row)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	e.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET description = ?, amount = ?, date = ?,
			category = ?, is_public = ?, sync_pending = 1, updated_at = ?
		WHERE id = ?`,
		e.Description, e.Amount.String(), formatTime(e.Date),
		string(e.Category), boolToInt(e.IsPublic), formatTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// PublicExpenses returns a vehicle's publicly visible expenses, newest
// first, for the verification view.
func (r *SQLiteRepository) PublicExpenses(ctx context.Context, vehicleID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE vehicle_id = ? AND is_public = 1
		ORDER BY date DESC, id`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query public expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// ---- sync bookkeeping ----

// PendingSyncVehicleIDs lists vehicles not yet mirrored to the audit
// export, oldest change first.
func (r *SQLiteRepository) PendingSyncVehicleIDs(ctx context.Context, limit int) ([]string, error) {
	return r.pendingIDs(ctx, "vehicles", limit)
}

func (r *SQLiteRepository) PendingSyncExpenseIDs(ctx context.Context, limit int) ([]string, error) {
	return r.pendingIDs(ctx, "expenses", limit)
}

func (r *SQLiteRepository) pendingIDs(ctx context.Context, table string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE sync_pending = 1 ORDER BY updated_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) MarkVehicleSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE vehicles SET sync_pending = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark vehicle synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE expenses SET sync_pending = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// ---- dealer profile ----

func (r *SQLiteRepository) GetDealerProfile(ctx context.Context) (*core.DealerProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, company_name, address, phone, email, updated_at
		FROM dealer_profiles ORDER BY updated_at DESC LIMIT 1`)

	var p core.DealerProfile
	var updatedAt string
	err := row.Scan(&p.ID, &p.CompanyName, &p.Address, &p.Phone, &p.Email, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan dealer profile: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse profile updated_at: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) SaveDealerProfile(ctx context.Context, p *core.DealerProfile) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dealer_profiles (id, company_name, address, phone, email, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET company_name = excluded.company_name,
			address = excluded.address, phone = excluded.phone,
			email = excluded.email, updated_at = excluded.updated_at`,
		p.ID, p.CompanyName, p.Address, p.Phone, p.Email, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save dealer profile: %w", err)
	}
	return nil
}

// ---- scan helpers ----

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row scanner) (*core.Vehicle, error) {
	var (
		v                       core.Vehicle
		status                  string
		purchasePrice, margin   string
		purchaseDate            string
		soldPrice, soldDate     sql.NullString
		images                  string
		createdAt, updatedAt    string
	)
	err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.RegNumber, &v.VIN,
		&purchasePrice, &purchaseDate, &status, &soldPrice, &soldDate,
		&margin, &images, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}

	v.Status = core.VehicleStatus(status)
	if v.PurchasePrice, err = decimal.NewFromString(purchasePrice); err != nil {
		return nil, fmt.Errorf("parse purchase price: %w", err)
	}
	if v.ProfitMargin, err = decimal.NewFromString(margin); err != nil {
		return nil, fmt.Errorf("parse profit margin: %w", err)
	}
	if v.PurchaseDate, err = parseTime(purchaseDate); err != nil {
		return nil, fmt.Errorf("parse purchase date: %w", err)
	}
	if soldPrice.Valid {
		price, err := decimal.NewFromString(soldPrice.String)
		if err != nil {
			return nil, fmt.Errorf("parse sold price: %w", err)
		}
		v.SoldPrice = &price
	}
	if soldDate.Valid {
		date, err := parseTime(soldDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse sold date: %w", err)
		}
		v.SoldDate = &date
	}
	if err := json.Unmarshal([]byte(images), &v.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &v, nil
}

func scanExpense(row scanner) (*core.Expense, error) {
	var (
		e                    core.Expense
		amount, date         string
		category             string
		isPublic             int
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.VehicleID, &e.Description, &amount, &date,
		&category, &isPublic, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	e.Category = core.ExpenseCategory(category)
	e.IsPublic = isPublic != 0
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse expense amount: %w", err)
	}
	if e.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("parse expense date: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &e, nil
}

func (r *SQLiteRepository) collectVehicles(ctx context.Context, rows *sql.Rows) ([]core.Vehicle, error) {
	var (
		vehicles []core.Vehicle
		ids      []string
	)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	if len(vehicles) == 0 {
		return []core.Vehicle{}, nil
	}

	expenses, err := r.expensesForVehicles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range vehicles {
		vehicles[i].Expenses = expenses[vehicles[i].ID]
	}
	return vehicles, nil
}

func (r *SQLiteRepository) expensesForVehicles(ctx context.Context, vehicleIDs []string) (map[string][]core.Expense, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vehicleIDs)), ",")
	args := make([]any, len(vehicleIDs))
	for i, id := range vehicleIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE vehicle_id IN (`+placeholders+`)
		ORDER BY date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	byVehicle := make(map[string][]core.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		byVehicle[e.VehicleID] = append(byVehicle[e.VehicleID], *e)
	}
	return byVehicle, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
