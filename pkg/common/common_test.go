package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"voidstate/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func TestClientIDContext(t *testing.T) {
	assert.Equal(t, valueobjects.ClientID("unknown"), GetClientID(context.Background()))

	ctx := WithClientID(context.Background(), valueobjects.NewClientID("192.0.2.1"))
	assert.Equal(t, valueobjects.ClientID("192.0.2.1"), GetClientID(ctx))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, OKResponse{OK: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRespondEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondEmpty(rec, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}
