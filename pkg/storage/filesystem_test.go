package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/api/v1/files/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "variation-orders/7/proposed/a.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/variation-orders/7/proposed/a.pdf", url)

	file, err := store.Open("variation-orders/7/proposed/a.pdf")
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, store.Delete(ctx, "variation-orders/7/proposed/a.pdf"))
	require.NoError(t, store.Delete(ctx, "variation-orders/7/proposed/a.pdf"))
	_, err = store.Open("variation-orders/7/proposed/a.pdf")
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = store.Open("a/../../b")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorageHonoursCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Put(ctx, "a.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Open("a.txt")
	assert.Error(t, err)
}

func TestCleanKey(t *testing.T) {
	key, err := CleanKey(`/variation-orders\3//a.pdf`)
	require.NoError(t, err)
	assert.Equal(t, "variation-orders/3/a.pdf", key)

	for _, bad := range []string{"", "   ", "/", "..", "a/../b"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}
