package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	h := &Handler{Manager: env.manager, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, env
}

func doJSON(t *testing.T, method, url, body string) (int, View) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var view View
	_ = json.NewDecoder(resp.Body).Decode(&view)
	return resp.StatusCode, view
}

func TestSessionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1/cart-sessions"

	status, created := doJSON(t, http.MethodPost, base, "")
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.SessionID)

	sessionURL := base + "/" + created.SessionID

	status, view := doJSON(t, http.MethodPut, sessionURL+"/items",
		`{"items":[{"key":"`+testProduct.String()+`_0","qty":2}]}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 60000, view.Totals.Subtotal)

	status, view = doJSON(t, http.MethodPut, sessionURL+"/address", `{"pincode":"400001"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "400001", view.Pincode)

	status, view = doJSON(t, http.MethodPut, sessionURL+"/tip", `{"tip":20}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 2000, view.Totals.Tip)

	status, view = doJSON(t, http.MethodPost, sessionURL+"/gift/select", `{"gift":"Tote Bag"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Tote Bag", view.Gift.SelectedGift)

	// promo while gift active raises a confirmable conflict
	status, view = doJSON(t, http.MethodPost, sessionURL+"/promo", `{"code":"FRESH50"}`)
	require.Equal(t, http.StatusConflict, status)
	require.NotNil(t, view.Conflict)
	require.Equal(t, ConflictPromo, view.Conflict.Kind)

	status, view = doJSON(t, http.MethodPost, sessionURL+"/switch/confirm", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, view.Promo.Applied())
	require.Empty(t, view.Gift.SelectedGift)

	status, view = doJSON(t, http.MethodDelete, sessionURL+"/promo", "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, view.Promo.Applied())
}

func TestSessionEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1/cart-sessions"

	status, _ := doJSON(t, http.MethodGet, base+"/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodGet, base+"/00000000-0000-0000-0000-000000000001", "")
	require.Equal(t, http.StatusNotFound, status)

	_, created := doJSON(t, http.MethodPost, base, "")
	sessionURL := base + "/" + created.SessionID

	// validation failures come back as 422
	status, _ = doJSON(t, http.MethodPut, sessionURL+"/address", `{"pincode":"40"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, http.MethodPost, sessionURL+"/promo", `{"code":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// selecting a gift with an empty cart has no eligible offer
	status, _ = doJSON(t, http.MethodPost, sessionURL+"/gift/select", `{"gift":"Tote Bag"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
}
