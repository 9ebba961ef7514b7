package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a 32-char hex id for locally owned rows (admin accounts).
// App users keep the identity provider's id instead.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
