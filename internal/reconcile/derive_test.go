package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"devhub/internal/domain"
)

func TestMapRole(t *testing.T) {
	cases := []struct {
		hint string
		want domain.Role
	}{
		{"admin", domain.RoleAdmin},
		{"Admin", domain.RoleAdmin},
		{"ADMIN", domain.RoleAdmin},
		{"moderator", domain.RoleModerator},
		{"guest", domain.RoleGuest},
		{"", domain.RoleMember},
		{"banana", domain.RoleMember},
		{"administrator", domain.RoleMember},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapRole(tc.hint), "hint %q", tc.hint)
	}
}

func TestGenerateUsername(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		email     string
		id        string
		want      string
	}{
		{"candidate wins unchanged", "alice", "bob@example.com", "abc", "alice"},
		{"email local part sanitized", "", "bob.smith+x@example.com", "abc", "bob_smith_x"},
		{"email truncated to 20", "", "abcdefghijklmnopqrstuvwxyz@example.com", "abc", "abcdefghijklmnopqrst"},
		{"empty local part stays empty", "", "@example.com", "abc", ""},
		{"no at sign uses whole email", "", "plainaddress", "abc", "plainaddress"},
		{"id suffix fallback", "", "", "abcdefgh12345678", "user_12345678"},
		{"short id used whole", "", "", "abc", "user_abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenerateUsername(tc.candidate, tc.email, tc.id))
		})
	}
}

func TestGenerateUsernameIDSuffix(t *testing.T) {
	got := GenerateUsername("", "", "user_29x7abcdqrstuvwx")
	assert.Equal(t, "user_qrstuvwx", got)
	assert.Len(t, got, len("user_")+8)
}

func TestFormatDisplayName(t *testing.T) {
	assert.Equal(t, "Anonymous", FormatDisplayName("", ""))
	assert.Equal(t, "Ada", FormatDisplayName("Ada", ""))
	assert.Equal(t, "Lovelace", FormatDisplayName("", "Lovelace"))
	assert.Equal(t, "Ada Lovelace", FormatDisplayName("Ada", "Lovelace"))
}
