package render

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_ServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ServiceError(w, "credenciais inválidas", http.StatusUnauthorized)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"erro": "credenciais inválidas"}`, string(body))
}

func TestRender_InternalError(t *testing.T) {
	w := httptest.NewRecorder()

	InternalError(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"erro": "erro interno"}`, w.Body.String())
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key     string `json:"key"`
			OwnerID int    `json:"usuarios_id"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name        string
		requestBody string
		expected    string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
			expected:    `{"erro": "JSON inválido: invalid character 'i' looking for beginning of value"}`,
		},
		{
			name:        "invalid type",
			requestBody: `{"key": "valid_json", "usuarios_id": "but incorrect type"}`,
			expected:    `{"erro": "tipo inválido para o campo 'usuarios_id'"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestRender_ValidationErrors(t *testing.T) {
	type T struct {
		Name     string           `json:"nome" validate:"required"`
		Password string           `json:"senha" validate:"min=6"`
		Email    string           `json:"email" validate:"email"`
		OwnerID  int64            `json:"usuarios_id" validate:"gte=1"`
		Price    *decimal.Decimal `json:"preco" validate:"required,gte=1"`
		Tracks   string           `json:"faixas" validate:"max=3"`
	}

	price := decimal.RequireFromString("0.99")
	invalidData := T{
		Password: "123",
		Email:    "not-valid-email",
		Price:    &price,
		Tracks:   "1234",
	}

	w := httptest.NewRecorder()
	ValidationErrors(w, "", Validate(invalidData))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"erro": "dados inválidos",
		"campos": {
			"nome": "campo obrigatório",
			"senha": "deve ter pelo menos 6 caracteres",
			"email": "email inválido",
			"usuarios_id": "deve ser maior ou igual a 1",
			"preco": "deve ser maior ou igual a 1",
			"faixas": "deve ter no máximo 3 caracteres"
		}
	}`, w.Body.String())
}

func TestRender_ValidationErrors_NotValidatorError(t *testing.T) {
	w := httptest.NewRecorder()

	ValidationErrors(w, "envie pelo menos um campo", errors.New("boom"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"erro": "envie pelo menos um campo"}`, w.Body.String())
}

func TestRender_BindAndValidate(t *testing.T) {
	type User struct {
		Email string `json:"email" validate:"required"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"email": "ana@x.com"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"erro": "JSON inválido: invalid character 'i' looking for beginning of value"}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"erro": "email é obrigatório",
				"campos": {
					"email": "campo obrigatório"
				}
			}`,
		},
		{
			name:           "body too large",
			requestBody:    `{"email": "` + strings.Repeat("a", maxBodyBytes) + `"}`,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   `{"erro": "corpo da requisição muito grande"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.requestBody))

			_, err := BindAndValidate[User](w, r, "email é obrigatório")
			if err == nil {
				JSON(w, map[string]bool{"success": true})
			}

			require.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}
