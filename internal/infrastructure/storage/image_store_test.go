package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 100, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalImageStore_SaveResizesAndDeletes(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "http://localhost:8080/uploads/", 5<<20)
	require.NoError(t, err)

	img, err := store.Save(context.Background(), "variants", bytes.NewReader(pngBytes(t, 2400, 600)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.PublicID, "variants/"))
	assert.Equal(t, "http://localhost:8080/uploads/"+img.PublicID+".jpg", img.URL)

	full := filepath.Join(dir, filepath.FromSlash(img.PublicID)+".jpg")
	saved, err := imaging.Open(full)
	require.NoError(t, err)
	assert.Equal(t, 1200, saved.Bounds().Dx())
	assert.Equal(t, 300, saved.Bounds().Dy())

	require.NoError(t, store.Delete(context.Background(), img.PublicID))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// borrar dos veces no falla
	assert.NoError(t, store.Delete(context.Background(), img.PublicID))
}

func TestLocalImageStore_Rejects(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), "/uploads", 100)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "variants", bytes.NewReader(make([]byte, 101)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = store.Save(context.Background(), "variants", strings.NewReader("no soy una imagen"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	assert.ErrorIs(t, store.Delete(context.Background(), "../../etc/passwd"), ErrInvalidPublicID)
}
