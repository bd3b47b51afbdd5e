package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/stone-realestate/leadops/internal/entity"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token            string           `json:"token"`
	AccessToken      string           `json:"access_token"`
	AccessTokenCamel string           `json:"accessToken"`
	User             *entity.Identity `json:"user"`
}

func (r loginResponse) token() string {
	switch {
	case r.Token != "":
		return r.Token
	case r.AccessToken != "":
		return r.AccessToken
	default:
		return r.AccessTokenCamel
	}
}

type meResponse struct {
	User *entity.Identity `json:"user"`
}

type errorBody struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
}

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Endpoint string
	Status   int
	Code     string
	Message  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *HTTPError) HTTPStatus() int      { return e.Status }
func (e *HTTPError) ErrorCode() string    { return e.Code }
func (e *HTTPError) ErrorMessage() string { return e.Message }

var errorCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

const maxErrorText = 200

// parseHTTPError reads {error, message} bodies. "error" is a code when it
// looks like one and a message otherwise.
func parseHTTPError(endpoint string, status int, body []byte) *HTTPError {
	out := &HTTPError{Endpoint: endpoint, Status: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if s, ok := parsed.Error.(string); ok {
			if errorCodePattern.MatchString(s) {
				out.Code = s
			} else if parsed.Message == "" {
				out.Message = s
			}
		}
		if parsed.Message != "" {
			out.Message = parsed.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > maxErrorText {
			text = text[:maxErrorText]
		}
		out.Message = text
	}

	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
