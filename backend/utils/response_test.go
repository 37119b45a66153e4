package utils

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteSuccessResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessResponse(rec, "ok", map[string]int{"nodes": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, map[string]interface{}{"nodes": float64(3)}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorResponse(rec, http.StatusNotFound, "missing", errors.New("no such route"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "no such route", body["error"])
	assert.NotContains(t, body, "data")
}

func TestWriteValidationErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationErrorResponse(rec, "bad request", models.ValidationErrors{
		{Field: "top_k", Message: "must be greater than or equal to 0", Value: "-1"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	errs, ok := data["validation_errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "top_k", errs[0].(map[string]interface{})["field"])
}

func TestWriteJSONResponseEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessResponse(rec, "nan", math.NaN())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestValidateContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, ValidateContentType(req, "application/json"))

	req.Header.Set("Content-Type", "text/csv")
	assert.False(t, ValidateContentType(req, "application/json"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "192.0.2.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "192.0.2.1:1234", "10.0.0.9"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
