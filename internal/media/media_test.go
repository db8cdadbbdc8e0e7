package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "uploads"), nil, zap.NewNop()), dir
}

func TestUploadAndOpenRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 1, 2, 3}

	url, err := s.Upload(payload, "my file.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-my_file.png"), "spaces become underscores")

	name := strings.TrimPrefix(url, "/uploads/")
	got, err := s.Open(name)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestUploadRejectsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Upload(nil, "x.png")
	require.Error(t, err)
}

func TestListClassifiesAndSorts(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Upload([]byte("img"), "a.png")
	require.NoError(t, err)
	_, err = s.Upload([]byte("vid"), "b.mp4")
	require.NoError(t, err)

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 2)

	types := map[string]string{}
	for _, f := range files {
		if strings.HasSuffix(f.Name, ".png") {
			types["png"] = f.Type
		} else {
			types["mp4"] = f.Type
		}
		assert.Equal(t, "/uploads/"+f.Name, f.URL)
		assert.NotZero(t, f.Size)
	}
	assert.Equal(t, "image", types["png"])
	assert.Equal(t, "video", types["mp4"])
}

func TestListMissingDir(t *testing.T) {
	s, _ := newTestStore(t)
	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDeleteTraversalRejected(t *testing.T) {
	s, root := newTestStore(t)

	// A victim file outside the upload dir must stay untouched.
	victim := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o644))

	for _, name := range []string{"../secret.txt", "..\\secret.txt", "a/../../secret.txt", "", "sub/secret.txt"} {
		assert.ErrorIs(t, s.Delete(name), ErrInvalidName, name)
	}

	_, err := os.Stat(victim)
	assert.NoError(t, err)
}

func TestOpenTraversalRejected(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("keep"), 0o644))

	_, err := s.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestOpenFallbackDirs(t *testing.T) {
	root := t.TempDir()
	legacy := filepath.Join(root, "legacy")
	require.NoError(t, os.MkdirAll(legacy, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(legacy, "old.png"), []byte("legacy bytes"), 0o644))

	s := New(filepath.Join(root, "uploads"), []string{legacy}, zap.NewNop())

	got, err := s.Open("old.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy bytes"), got)

	_, err = s.Open("nowhere.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExisting(t *testing.T) {
	s, _ := newTestStore(t)
	url, err := s.Upload([]byte("x"), "gone.png")
	require.NoError(t, err)
	name := strings.TrimPrefix(url, "/uploads/")

	require.NoError(t, s.Delete(name))
	assert.ErrorIs(t, s.Delete(name), ErrNotFound)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "video/mp4", ContentType("a.mp4"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
