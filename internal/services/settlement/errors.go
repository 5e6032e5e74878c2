package settlement

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GatewayError carries the gateway's own error code and message so the
// caller can surface them verbatim, distinct from application errors.
type GatewayError struct {
	Code    string
	Message string
	Raw     json.RawMessage
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// Synthetic codes for failures before a gateway verdict exists.
const (
	CodeUnreachable = "UNREACHABLE"
	CodeBadResponse = "BAD_RESPONSE"
)

// AsGatewayError unwraps err into a GatewayError if it is one.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
