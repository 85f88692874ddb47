package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/personavault/internal/consent"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
)

// Standard Error Responses

var (
	ErrInvalidJSON         = &HTTPError{Code: "invalid_json", Message: "Invalid JSON format", Status: http.StatusBadRequest}
	ErrBadRequest          = &HTTPError{Code: "bad_request", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized        = &HTTPError{Code: "unauthorized", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden           = &HTTPError{Code: "forbidden", Message: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound            = &HTTPError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrConflict            = &HTTPError{Code: "conflict", Message: "Conflict", Status: http.StatusConflict}
	ErrTooManyRequests     = &HTTPError{Code: "rate_limited", Message: "Too many requests", Status: http.StatusTooManyRequests}
	ErrInternalServerError = &HTTPError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrServiceUnavailable  = &HTTPError{Code: "service_unavailable", Message: "Service unavailable", Status: http.StatusServiceUnavailable}
)

// HTTPError representa un error estándar de la API.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"-"`

	// Extra se mergea en el body (ej: existingRequestId, requiredScopes).
	Extra map[string]any `json:"-"`
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail retorna una copia del error con detalle específico.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: e.Message, Detail: detail, Status: e.Status, Extra: e.Extra}
}

// WithExtra retorna una copia con campos extra en el body.
func (e *HTTPError) WithExtra(extra map[string]any) *HTTPError {
	return &HTTPError{Code: e.Code, Message: e.Message, Detail: e.Detail, Status: e.Status, Extra: extra}
}

// FromDomain traduce errores de dominio al contrato HTTP. Los errores de
// consent llevan payload extra para que los clientes puedan reaccionar sin
// parsear mensajes.
func FromDomain(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var hErr *HTTPError
	if errors.As(err, &hErr) {
		return hErr
	}

	var pending *consent.PendingExistsError
	if errors.As(err, &pending) {
		return &HTTPError{
			Code:    "pending_request_exists",
			Message: "A pending consent request already exists for this identity",
			Status:  http.StatusConflict,
			Extra:   map[string]any{"existingRequestId": pending.ExistingID},
		}
	}
	var decided *consent.AlreadyDecidedError
	if errors.As(err, &decided) {
		return &HTTPError{
			Code:    "already_decided",
			Message: "This consent request was already decided",
			Status:  http.StatusConflict,
			Extra:   map[string]any{"status": string(decided.Status)},
		}
	}
	var ownership *consent.OwnershipError
	if errors.As(err, &ownership) {
		return &HTTPError{
			Code:    "identity_not_owned",
			Message: "One or more identities do not belong to the caller",
			Status:  http.StatusForbidden,
			Extra:   map[string]any{"offendingIdentityIds": ownership.OffendingIDs},
		}
	}

	switch {
	case errors.Is(err, apikey.ErrInvalidCredentials):
		return &HTTPError{Code: "invalid_credentials", Message: "Invalid app id or key", Status: http.StatusUnauthorized}
	case errors.Is(err, repository.ErrInvalidInput):
		return &HTTPError{Code: "invalid_input", Message: "Invalid input", Detail: trimSentinel(err), Status: http.StatusBadRequest}
	case errors.Is(err, repository.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, repository.ErrForbidden):
		return &HTTPError{Code: "forbidden", Message: "Forbidden", Detail: trimSentinel(err), Status: http.StatusForbidden}
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyDecided):
		return &HTTPError{Code: "already_decided", Message: "This consent request was already decided", Status: http.StatusConflict}
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	return ErrInternalServerError
}

// trimSentinel corta el prefijo del sentinel ("invalid input: ...") para no
// duplicarlo con Message.
func trimSentinel(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// WriteError escribe el error como JSON.
func WriteError(w http.ResponseWriter, err error) {
	hErr := FromDomain(err)
	if hErr == nil {
		hErr = ErrInternalServerError
	}

	body := map[string]any{
		"code":    hErr.Code,
		"message": hErr.Message,
	}
	if hErr.Detail != "" {
		body["detail"] = hErr.Detail
	}
	for k, v := range hErr.Extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(hErr.Status)
	_ = json.NewEncoder(w).Encode(body)
}
