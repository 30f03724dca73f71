package mirror

import (
	"errors"
	"net/http"
	"sort"

	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
	"github.com/nextstepz/community/internal/validate"
)

// User-facing messages
const (
	MsgGeneric          = "Đã xảy ra lỗi, vui lòng thử lại"
	MsgEmptyContent     = "Vui lòng nhập nội dung bình luận"
	MsgSubmitInProgress = "Bình luận đang được gửi, vui lòng chờ"
)

// UserMessage turns any error into the single line shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if fe, ok := validate.AsErrors(err); ok {
		return fe.First()
	}

	switch {
	case errors.Is(err, ErrEmptyContent):
		return MsgEmptyContent
	case errors.Is(err, ErrSubmitInProgress):
		return MsgSubmitInProgress
	}

	var apiErr *community.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return middleware.MsgLoginRequired
		case http.StatusBadRequest:
			if len(apiErr.Fields) > 0 {
				return firstField(apiErr.Fields)
			}
			if apiErr.Message != "" {
				return apiErr.Message
			}
		}
	}
	return MsgGeneric
}

func firstField(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields[keys[0]]
}
