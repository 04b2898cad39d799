package http

import (
	"encoding/json"
	"net/http"

	dErrors "shield/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a request body into v, translating decode failures into a
// bad-request coded error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request body")
	}
	return nil
}
