package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	name := NewName("Quarterly Report.PDF")
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	object, err := store.Put(ctx, name, "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), object.Size)

	body, opened, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "application/pdf", opened.ContentType)
	assert.Equal(t, int64(8), opened.Size)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	secret := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	for _, name := range []string{"../secret.txt", "..", "a/b.txt", `..\secret.txt`, ".hidden", ""} {
		_, _, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)

		_, err = store.Put(ctx, name, "text/plain", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestLocalStoreMissingBlob(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(ctx, "a.txt", "text/plain", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "a.txt", "text/plain", strings.NewReader("second"))
	require.Error(t, err)
}

func TestNewName(t *testing.T) {
	assert.NotEqual(t, NewName("a.png"), NewName("a.png"))
	assert.False(t, strings.Contains(NewName("../../etc/passwd"), "/"))
	assert.Len(t, NewName("no-extension"), 36)
	assert.Len(t, NewName("weird.ex t"), 36)
	assert.True(t, ValidName(NewName("photo.jpeg")))
}
