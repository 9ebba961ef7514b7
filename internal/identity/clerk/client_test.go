package clerk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguredNeedsBothKeys(t *testing.T) {
	cases := []struct {
		name        string
		secret, pub string
		want        bool
	}{
		{"both keys", "sk_test_x", "pk_test_x", true},
		{"secret only", "sk_test_x", "", false},
		{"publishable only", "", "pk_test_x", false},
		{"neither", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.secret, tc.pub, "", time.Second)
			assert.Equal(t, tc.want, c.Configured())
		})
	}
}

func TestProfileFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user_c1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "user_c1",
			"username": "ada",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"image_url": "https://img.example.com/ada.png",
			"primary_email_address_id": "idn_2",
			"email_addresses": [
				{"id": "idn_1", "email_address": "old@example.com"},
				{"id": "idn_2", "email_address": "ada@example.com"}
			],
			"public_metadata": {"role": "moderator"}
		}`))
	}))
	defer srv.Close()

	c := New("sk_test_x", "pk_test_x", srv.URL, time.Second)
	p, err := c.Profile(context.Background(), "user_c1")
	require.NoError(t, err)
	assert.Equal(t, "user_c1", p.ID)
	assert.Equal(t, "ada@example.com", p.Email) // primary wins over first
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "moderator", p.RoleHint)
}

func TestProfileFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("sk_test_x", "pk_test_x", srv.URL, time.Second)
	_, err := c.Profile(context.Background(), "user_missing")
	assert.Error(t, err)
}
