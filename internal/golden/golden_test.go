package golden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssert(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer func() {
		_ = os.Chdir(wd)
	}()

	obj := map[string]int{"hp": 100}

	// first run writes the file
	Assert(t, "example", obj)
	b, err := os.ReadFile(filepath.Join("testdata", "example.json"))
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"hp\": 100\n}\n", string(b))

	// second run compares against it
	Assert(t, "example", obj)

	// UPDATE_GOLDEN rewrites it
	t.Setenv("UPDATE_GOLDEN", "1")
	Assert(t, "example", map[string]int{"hp": 99})
	b, err = os.ReadFile(filepath.Join("testdata", "example.json"))
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"hp\": 99\n}\n", string(b))
}
