package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/validate"
)

// MsgInvalidJSON is returned when a request body cannot be decoded
const MsgInvalidJSON = "Dữ liệu gửi lên không hợp lệ"

// LikeRecorder receives like toggles for metrics
type LikeRecorder interface {
	LikeToggled(target string, liked bool)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// queryInt parses a positive integer query parameter, falling back to def
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func queryFloat(r *http.Request, key string) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

// queryList accepts both repeated keys and comma separated values
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// writeValidation answers with the field messages when err is a validation failure
func writeValidation(w http.ResponseWriter, err error) bool {
	verrs, ok := validate.AsErrors(err)
	if !ok {
		return false
	}
	response.ValidationError(w, verrs.First(), verrs)
	return true
}
