package transaction

import "time"

// Default configuration values
const (
	DefaultAssessTimeout  = 5 * time.Second
	DefaultGatewayTimeout = 10 * time.Second
	DefaultIntentTTL      = 1 * time.Minute
	DefaultUserID         = "usr_budi_123"
	DefaultLocation       = "Jakarta, ID"
)

// Cache keys
const (
	IntentCachePrefix      = "intent:"
	ExplanationCachePrefix = "explanation:"
)
