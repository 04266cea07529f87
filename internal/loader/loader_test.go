package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const minimalSpec = `
openapi: 3.1.0
info:
  title: test
  version: "1.0"
paths: {}
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	result, err := LoadFile(writeSpec(t, minimalSpec))
	require.NoError(t, err)

	require.Equal(t, "3.1.0", result.Version)
	require.NotNil(t, result.Document)
	require.Equal(t, "test", result.Document.Model.Info.Title)
	require.Empty(t, result.Warnings)
}

func TestLoadFileWarnsOn30(t *testing.T) {
	result, err := LoadFile(writeSpec(t, `
openapi: 3.0.3
info:
  title: test
  version: "1.0"
paths: {}
`))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
}

func TestLoadFileRejectsSwagger2(t *testing.T) {
	_, err := LoadFile(writeSpec(t, `
swagger: "2.0"
info:
  title: test
  version: "1.0"
paths: {}
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported OpenAPI version")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	result, err := LoadFile(writeSpec(t, minimalSpec))
	require.NoError(t, err)

	messages, err := result.Validate()
	require.NoError(t, err)
	require.Empty(t, messages)
}
