package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	a := assert.New(t)
	a.Equal("default", Getenv("HPBJ_TEST_FOO", "default"))

	t.Setenv("HPBJ_TEST_FOO", "bar")
	a.Equal("bar", Getenv("HPBJ_TEST_FOO", "default"))

	t.Setenv("HPBJ_TEST_FOO", "")
	a.Equal("default", Getenv("HPBJ_TEST_FOO", "default"))
}
