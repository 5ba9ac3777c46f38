package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldDriverNum   = "driver_num"
	FieldTripID      = "trip_id"
	FieldRecordCount = "record_count"
	FieldFetchedAt   = "fetched_at"
	FieldNachaTitle  = "nacha_title"
)

// Components defines standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentRecords  = "records"
	ComponentStore    = "store"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentAuth     = "auth"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
	ComponentSecurity = "security"
)

// Operations defines standard operation names.
const (
	OpFetch    = "fetch"
	OpRefresh  = "refresh"
	OpFilter   = "filter"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpSnapshot = "snapshot"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
