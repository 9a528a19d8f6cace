package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a request.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldCaller is the hashed client address
	FieldCaller = "caller"

	// FieldGeneration is the generation number once assigned
	FieldGeneration = "generation"

	// FieldMood is the resolved mood
	FieldMood = "mood"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
