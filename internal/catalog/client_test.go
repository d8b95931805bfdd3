package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resellhub/storefront/internal/fault"
)

func TestFetchItemSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "ck_test", user)
		require.Equal(t, "cs_test", pass)
		require.Equal(t, "/products/42", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"id":          42,
			"name":        "Training Shirt",
			"price":       "24.99",
			"description": "Breathable.",
			"images":      []map[string]string{{"src": "https://cdn.example/shirt.jpg"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ck_test", "cs_test")
	item, err := c.FetchItem(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), item.ID)
	require.Equal(t, "Training Shirt", item.Name)
	require.Equal(t, "24.99", item.Price)
	require.Equal(t, []string{"https://cdn.example/shirt.jpg"}, item.Images)
}

func TestFetchRawPassesBodyThrough(t *testing.T) {
	const body = `{"id":7,"name":"Socks","custom_field":{"nested":true}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ck", "cs")
	raw, err := c.FetchRaw(context.Background(), 7)
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestFetchRawUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ck", "cs")
	_, err := c.FetchRaw(context.Background(), 9999)
	require.ErrorIs(t, err, fault.ErrUpstream)
}
