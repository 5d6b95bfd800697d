package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Max size of JSON request body
const maxBodyBytes = 1 << 20

const (
	MessageInternal   = "erro interno"
	MessageValidation = "dados inválidos"
)

type Struct any

// Every failure response. Message is always under 'erro'
type ErrorResponse struct {
	Error  string            `json:"erro"`
	Fields map[string]string `json:"campos,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, message string, code int) {
	JSONWithStatus(w, ErrorResponse{Error: message}, code)
}

// Render generic 500 without any details
func InternalError(w http.ResponseWriter) {
	ServiceError(w, MessageInternal, http.StatusInternalServerError)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	var (
		typeErr  *json.UnmarshalTypeError
		maxBytes *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytes):
		ServiceError(w, "corpo da requisição muito grande", http.StatusRequestEntityTooLarge)
	case errors.As(err, &typeErr):
		ServiceError(w, fmt.Sprintf("tipo inválido para o campo '%s'", typeErr.Field), http.StatusBadRequest)
	default:
		ServiceError(w, fmt.Sprintf("JSON inválido: %s", err.Error()), http.StatusBadRequest)
	}
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// On validation failure message is rendered under 'erro' (MessageValidation if empty) and failed fields under 'campos'.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request, message string) (T, error) {
	var value T

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = Validate(value)
	if err != nil {
		ValidationErrors(w, message, err)
		return value, err
	}

	return value, nil
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
