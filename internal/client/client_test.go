package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrclskn/biolink/internal/client"
	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/syncer"
)

var _ syncer.Backend = (*client.Client)(nil)

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/profile/u%201", r.URL.EscapedPath())
		assert.Equal(t, "u 1", r.Header.Get(client.UserHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"profile":{"id":"p1","username":"creator","settings":"{\"theme\":{}}"},"links":[{"id":"l1","label":"One","order":0,"isActive":true,"settings":{}}],"socialLinks":[]}`))
	}))
	defer srv.Close()

	resp, err := client.New(srv.URL+"/", "u 1").GetProfile(context.Background(), "u 1")
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.Profile.ID)
	require.Len(t, resp.Links, 1)
	assert.Equal(t, "One", resp.Links[0].Label)

	th, err := models.DecodeTheme(resp.Profile.Settings)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTheme(), th)
}

func TestSaveProfile_SendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "creator", req.Username)
		assert.Equal(t, []string{"gone"}, req.RemovedLinkIDs)

		_ = json.NewEncoder(w).Encode(models.SaveResponse{
			IDs:     map[string]string{"tmp": "real"},
			SavedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
	defer srv.Close()

	resp, err := client.New(srv.URL, "u1").SaveProfile(context.Background(), models.SaveRequest{
		Username:       "creator",
		RemovedLinkIDs: []string{"gone"},
	})
	require.NoError(t, err)
	assert.Equal(t, "real", resp.IDs["tmp"])
}

func TestErrorBodiesBecomeAppErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"USERNAME_TAKEN","message":"username \"creator\" is already taken"}}`))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, "u1").SaveProfile(context.Background(), models.SaveRequest{})

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUsernameTaken, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Contains(t, appErr.Message, "already taken")
}

func TestBareErrorStatusesAreMapped(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusNotFound, errors.ErrCodeNotFound},
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{http.StatusUnprocessableEntity, errors.ErrCodeBadRequest},
		{http.StatusBadGateway, errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := client.New(srv.URL, "u1").DeleteSocialLink(context.Background(), "s1")
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, "nope", appErr.Message)
		})
	}
}

func TestDeleteSocialLink_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/profile/links/action/s1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, client.New(srv.URL, "u1").DeleteSocialLink(context.Background(), "s1"))
}

func TestCheckUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profile/check-username/freshname", r.URL.Path)
		_, _ = w.Write([]byte(`{"available":true}`))
	}))
	defer srv.Close()

	ok, err := client.New(srv.URL, "u1").CheckUsername(context.Background(), "freshname")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransportErrorIsNotAppError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.New(srv.URL, "u1").GetProfile(context.Background(), "u1")
	require.Error(t, err)
	_, ok := errors.As(err)
	assert.False(t, ok)
}
