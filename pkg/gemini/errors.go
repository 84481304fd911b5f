package gemini

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/niramoy/niramoy-go/pkg/core"
)

// apiError is the error envelope returned by the Gemini API.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// parseError maps a Gemini error response onto the shared error taxonomy.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var ae apiError
	if err := json.Unmarshal(body, &ae); err != nil {
		return &core.Error{
			Type:    core.ErrProvider,
			Message: string(body),
		}
	}

	var errType core.ErrorType
	switch ae.Error.Status {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		errType = core.ErrInvalidRequest
	case "UNAUTHENTICATED":
		errType = core.ErrAuthentication
	case "PERMISSION_DENIED":
		errType = core.ErrPermission
	case "NOT_FOUND":
		errType = core.ErrNotFound
	case "RESOURCE_EXHAUSTED":
		errType = core.ErrRateLimit
	case "INTERNAL":
		errType = core.ErrAPI
	case "UNAVAILABLE":
		errType = core.ErrOverloaded
	default:
		errType = core.ErrProvider
	}

	// The HTTP status is authoritative when it disagrees with the body
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		errType = core.ErrRateLimit
	case http.StatusServiceUnavailable:
		errType = core.ErrOverloaded
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = core.ErrAuthentication
	}

	return &core.Error{
		Type:          errType,
		Message:       ae.Error.Message,
		Code:          ae.Error.Status,
		ProviderError: ae.Error,
	}
}
