package util

import (
	"github.com/google/uuid"
)

// RandomIdentity generates a random identity suitable for testing
func RandomIdentity() string {
	return "test-" + uuid.New().String()
}
