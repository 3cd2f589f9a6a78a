package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Message string `json:"message"`
}

func decode(body string) (payload, error) {
	var p payload
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSON(rec, req, &p)
	return p, err
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"message":"hi"}`, want: "hi"},
		{name: "trailing whitespace", body: "{\"message\":\"hi\"}\n\t ", want: "hi"},
		{name: "malformed", body: `{"message":`, wantErr: true},
		{name: "wrong type", body: `{"message":42}`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "trailing garbage", body: `{"message":"hi"} not-json`, wantErr: true},
		{name: "second value", body: `{"message":"hi"} {}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestDecodeJSON_BodyLimit(t *testing.T) {
	pad := strings.Repeat("a", MaxBodyBytes)
	_, err := decode(`{"message":"` + pad + `"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request body too large")

	fits := strings.Repeat("a", MaxBodyBytes-len(`{"message":""}`))
	got, err := decode(`{"message":"` + fits + `"}`)
	require.NoError(t, err)
	assert.Len(t, got.Message, len(fits))
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusTeapot, map[string]string{"reply": "olá"})

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"reply":"olá"}`, rec.Body.String())
}
