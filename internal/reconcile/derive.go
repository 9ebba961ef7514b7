package reconcile

import (
	"strings"

	"devhub/internal/domain"
)

// MapRole folds a free-text provider role hint into the application enum.
// Unknown or absent hints map to MEMBER, never to GUEST or an error.
func MapRole(hint string) domain.Role {
	switch strings.ToLower(hint) {
	case "admin":
		return domain.RoleAdmin
	case "moderator":
		return domain.RoleModerator
	case "guest":
		return domain.RoleGuest
	default:
		return domain.RoleMember
	}
}

// GenerateUsername derives a display handle.
// Priority: provider handle > email local-part > id suffix.
// No uniqueness check here; usernames may collide.
func GenerateUsername(candidate, email, fallbackID string) string {
	if candidate != "" {
		return candidate
	}

	if email != "" {
		local := email
		if at := strings.IndexByte(email, '@'); at >= 0 {
			local = email[:at]
		}
		var b strings.Builder
		for _, r := range local {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		s := b.String()
		if len(s) > 20 {
			s = s[:20]
		}
		// May legitimately be empty for a degenerate local-part.
		return s
	}

	tail := fallbackID
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "user_" + tail
}

// FormatDisplayName joins the non-empty name parts with a space, defaulting
// to the Anonymous sentinel.
func FormatDisplayName(first, last string) string {
	parts := make([]string, 0, 2)
	if first != "" {
		parts = append(parts, first)
	}
	if last != "" {
		parts = append(parts, last)
	}
	if len(parts) == 0 {
		return "Anonymous"
	}
	return strings.Join(parts, " ")
}
