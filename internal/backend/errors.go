package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/brandhub/pkg/errors"
)

// errorBody is the backend's error envelope. FastAPI-style services put the
// human-readable reason under "detail".
type errorBody struct {
	Detail string `json:"detail"`
}

// parseResponseError turns a non-2xx response into a typed error. The body is
// consumed and closed here.
func parseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	detail := ""
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil {
			detail = body.Detail
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if detail == "" {
			detail = "authentication required"
		}
		return apperrors.Unauthorized(detail)
	case http.StatusNotFound:
		if detail == "" {
			detail = "resource not found"
		}
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: detail,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case http.StatusConflict:
		if detail == "" {
			detail = "resource already exists"
		}
		return apperrors.Conflict(detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if detail == "" {
			detail = "invalid request"
		}
		return apperrors.InvalidInput(detail)
	case http.StatusRequestEntityTooLarge:
		return apperrors.InvalidInput("uploaded file is too large")
	default:
		if detail == "" {
			detail = fmt.Sprintf("unexpected backend status %d", resp.StatusCode)
		}
		return apperrors.Unavailable(detail)
	}
}
