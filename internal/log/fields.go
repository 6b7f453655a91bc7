package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOwnerID       = "owner_id"
	FieldTransactionID = "transaction_id"
	FieldAccountID     = "account_id"
	FieldAmount        = "amount"
	FieldLedgerRef     = "ledger_ref"
)

// Standard component names.
const (
	ComponentAPI       = "api"
	ComponentHTTP      = "http"
	ComponentWorker    = "worker"
	ComponentRecurring = "recurring"
)
