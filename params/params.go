// Package params turns the caller's optional JSON parameter object into the
// named-binding map handed to the statement executor, merging in the
// resolved identity so :user_id and :session_id work without caller effort.
package params

import (
	"encoding/json"
	"fmt"

	"github.com/nourish-labs/mealplan-mcp/identity"
)

// InvalidParameterError reports a params_json value that is not a JSON
// object, carrying the decode detail.
type InvalidParameterError struct {
	Err error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid params_json: %v", e.Err)
}

func (e *InvalidParameterError) Unwrap() error { return e.Err }

// Bind parses paramsJSON (which must be a JSON object when present) and
// injects the identity keys. Caller-supplied user_id/session_id values win
// over the resolved identity. Keys not referenced by the statement are
// simply ignored by the binder downstream, so extra keys are not an error.
func Bind(paramsJSON string, id identity.Identity) (map[string]any, error) {
	bound := map[string]any{}

	if paramsJSON != "" {
		var decoded any
		if err := json.Unmarshal([]byte(paramsJSON), &decoded); err != nil {
			return nil, &InvalidParameterError{Err: err}
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, &InvalidParameterError{Err: fmt.Errorf("expected a JSON object, got %T", decoded)}
		}
		bound = obj
	}

	if _, ok := bound["user_id"]; !ok {
		bound["user_id"] = id.UserID
	}
	if id.SessionID != "" {
		if _, ok := bound["session_id"]; !ok {
			bound["session_id"] = id.SessionID
		}
	}

	return bound, nil
}
