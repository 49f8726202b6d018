// Package params decodes JSON-RPC named parameters.
package params

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
)

// Bind decodes raw into dest. Missing or null params leave dest untouched;
// positional params and unknown fields are rejected.
func Bind(raw json.RawMessage, dest interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] != '{' {
		return apperr.Invalid("params must be an object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apperr.Wrap(apperr.KindInvalid, err, "invalid params")
	}
	return nil
}

// RequireID fails when id is the zero uuid
func RequireID(name string, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperr.Invalid("missing required parameter: %s", name)
	}
	return nil
}
