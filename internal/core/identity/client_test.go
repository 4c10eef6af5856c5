package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/identity"
	"github.com/stretchr/testify/require"
)

func TestClientResolve(t *testing.T) {
	t.Run("returns identity for valid session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/session-data", r.URL.Path)
			require.Equal(t, "ext-session-1", r.Header.Get("X-Session-ID"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"email":"alice@example.com","name":"Alice","picture":"https://img.example.com/a.png"}`))
		}))
		defer srv.Close()

		client := identity.NewClient("testprovider", srv.URL, 5*time.Second)
		ident, err := client.Resolve(t.Context(), "ext-session-1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", ident.Email)
		require.Equal(t, "Alice", ident.Name)
		require.Equal(t, "https://img.example.com/a.png", ident.Picture)
	})

	t.Run("fails on non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := identity.NewClient("testprovider", srv.URL, 5*time.Second)
		_, err := client.Resolve(t.Context(), "bad-session")
		require.Error(t, err)
	})

	t.Run("fails on malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := identity.NewClient("testprovider", srv.URL, 5*time.Second)
		_, err := client.Resolve(t.Context(), "ext-session-1")
		require.Error(t, err)
	})

	t.Run("fails when email missing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"No Email"}`))
		}))
		defer srv.Close()

		client := identity.NewClient("testprovider", srv.URL, 5*time.Second)
		_, err := client.Resolve(t.Context(), "ext-session-1")
		require.Error(t, err)
	})

	t.Run("times out on slow provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := identity.NewClient("testprovider", srv.URL, 50*time.Millisecond)
		_, err := client.Resolve(t.Context(), "ext-session-1")
		require.Error(t, err)
	})
}
