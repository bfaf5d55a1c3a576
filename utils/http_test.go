package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"token": "abc"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "abc", response["token"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteHelpers(t *testing.T) {
	tests := []struct {
		name      string
		write     func(w http.ResponseWriter)
		status    int
		errorType string
	}{
		{"ok", func(w http.ResponseWriter) { _ = WriteOK(w, 1) }, http.StatusOK, ""},
		{"created", func(w http.ResponseWriter) { _ = WriteCreated(w, 1) }, http.StatusCreated, ""},
		{"bad request", func(w http.ResponseWriter) { _ = WriteBadRequest(w, "x", nil) }, http.StatusBadRequest, "bad_request"},
		{"unauthorized", func(w http.ResponseWriter) { _ = WriteUnauthorized(w, "") }, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", func(w http.ResponseWriter) { _ = WriteForbidden(w, "") }, http.StatusForbidden, "forbidden"},
		{"not found", func(w http.ResponseWriter) { _ = WriteNotFound(w, "") }, http.StatusNotFound, "not_found"},
		{"conflict", func(w http.ResponseWriter) { _ = WriteConflict(w, "dup", nil) }, http.StatusConflict, "conflict"},
		{"internal", func(w http.ResponseWriter) { _ = WriteInternalServerError(w, "") }, http.StatusInternalServerError, "internal_error"},
		{"unavailable", func(w http.ResponseWriter) { _ = WriteServiceUnavailable(w, "db down") }, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			if tt.errorType != "" {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.errorType, body.Error)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "a@b.c", p.Email)
	})

	t.Run("empty", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		assert.Error(t, DecodeJSON(r, &p))
	})

	t.Run("malformed", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		assert.Error(t, DecodeJSON(r, &p))
	})

	t.Run("trailing document", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a"}{"email":"b"}`))
		assert.Error(t, DecodeJSON(r, &p))
	})
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc", "me"} {
		_, err := ParseID(raw)
		assert.Error(t, err, raw)
	}
}
