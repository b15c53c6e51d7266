package predict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifacts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encoders.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadArtifacts(t *testing.T) {
	path := writeArtifacts(t, `{"states": ["Jigawa", "Kano", "Sokoto"]}`)

	encoder, err := LoadArtifacts(path)
	require.NoError(t, err)
	assert.Equal(t, 3, encoder.Categories())

	code, err := encoder.Encode("Kano")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	_, err := LoadArtifacts(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadArtifactsMalformed(t *testing.T) {
	path := writeArtifacts(t, `{"states": "not-a-list"}`)
	_, err := LoadArtifacts(path)
	require.Error(t, err)
}

func TestLoadArtifactsEmptyCategories(t *testing.T) {
	path := writeArtifacts(t, `{"states": []}`)
	_, err := LoadArtifacts(path)
	require.Error(t, err)
}

func TestEncodeIsExactMatch(t *testing.T) {
	encoder, err := NewStateEncoder([]string{"Kano"})
	require.NoError(t, err)

	_, err = encoder.Encode("kano")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
