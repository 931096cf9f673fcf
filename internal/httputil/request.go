package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes caps request bodies. Bulk note imports are the largest
// payload; 10MB leaves generous headroom over the per-note content limit.
const maxBodyBytes = 10 << 20

// ParseJSON decodes the request body into dest. The body is size-limited so
// oversized payloads fail with 413 instead of exhausting memory. Unknown
// fields are tolerated; domain validators decide what is acceptable.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
