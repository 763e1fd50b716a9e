package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/cardbinder/cardbinder-server/internal/http/response"
)

// decode reads and validates a JSON request body into dst. Writes the
// error response and returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		response.BadRequest(w, "invalid JSON body", s.logger)
		return false
	}
	if err := s.validator.Validate(dst); err != nil {
		response.HandleError(w, err, s.logger)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. A missing or
// malformed value yields (0, false).
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
