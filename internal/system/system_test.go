package system

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.yaml", "b.YML", "c.yaml", "notes.txt"}
	base := time.Now().Add(-time.Hour)
	for i, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "z.yaml"), 0755))

	latest, err := FindLatest(dir, CompositionExts...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "c.yaml"), latest)

	// путь к файлу ищет в его папке
	latest, err = FindLatest(filepath.Join(dir, "a.yaml"), CompositionExts...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "c.yaml"), latest)

	_, err = FindLatest(dir, VideoExts...)
	assert.ErrorContains(t, err, ".mp4")

	_, err = FindLatest(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestHasExt(t *testing.T) {
	assert.True(t, HasExt("Clip.MP4", VideoExts...))
	assert.True(t, HasExt("page.pdf", ImageExts...))
	assert.False(t, HasExt("voice.mp3", ImageExts...))
	assert.False(t, HasExt("noext"))
}

func TestCollectStats(t *testing.T) {
	s, err := CollectStats()
	if err != nil {
		t.Skipf("host stats unavailable: %v", err)
	}
	assert.Positive(t, s.CPUs)
	assert.Positive(t, s.Goroutines)

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "[*] CPU:")
}
