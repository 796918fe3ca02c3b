package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByStem(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"subtitle.en-US.vtt", "subtitle.json3", "other.vtt", "subtitle"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subtitle.d"), 0o755))

	found, err := FindByStem(dir, "subtitle")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "subtitle.en-US.vtt"),
		filepath.Join(dir, "subtitle.json3"),
	}, found)
}

func TestFindByStem_MissingDir(t *testing.T) {
	found, err := FindByStem(filepath.Join(t.TempDir(), "gone"), "subtitle")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestExt(t *testing.T) {
	assert.Equal(t, "vtt", Ext("/tmp/x/subtitle.en.VTT"))
	assert.Equal(t, "json3", Ext("subtitle.json3"))
	assert.Equal(t, "", Ext("subtitle"))
}
