package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldItemCount   = "item_count"
	FieldVehicleID   = "vehicle_id"
	FieldExpenseID   = "expense_id"
	FieldRegNumber   = "reg_number"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldSoldPrice   = "sold_price"
	FieldEntity      = "entity"
	FieldAction      = "action"
	FieldSpreadsheet = "spreadsheet_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentVehicle = "vehicle"
	ComponentExpense = "expense"
	ComponentProfile = "profile"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpMarkSold = "mark_sold"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
