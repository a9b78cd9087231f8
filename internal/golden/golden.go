package golden

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Assert compares obj, encoded as indented JSON, with testdata/<name>.json
// The file is written instead when it does not exist or UPDATE_GOLDEN is set.
func Assert(t *testing.T, name string, obj interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	filename := filepath.Join("testdata", name+".json")
	objJSON, err := json.MarshalIndent(obj, "", "  ")
	require.NoError(t, err)

	expects, err := os.ReadFile(filename)
	if os.IsNotExist(err) || os.Getenv("UPDATE_GOLDEN") != "" {
		write(t, filename, objJSON)
		return
	}
	require.NoError(t, err)

	if !assert.Equal(t, strings.Trim(string(expects), "\n"), strings.Trim(string(objJSON), "\n"), msgAndArgs...) {
		t.Logf("golden file %s", filename)
	}
}

func write(t *testing.T, filename string, objJSON []byte) {
	t.Helper()

	logrus.WithField("filename", filename).Info("writing golden file")
	require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
	require.NoError(t, os.WriteFile(filename, append(objJSON, '\n'), 0644))
}
