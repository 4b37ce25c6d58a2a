package blobs

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/testutil"
)

func TestStoreAndPop(t *testing.T) {
	store := NewStore(testutil.DB(t))

	id, err := store.Store("photo.jpg", []byte("fake-bytes"))
	require.NoError(t, err)
	require.NotZero(t, id)

	blob, err := store.Pop(id)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", blob.Filename)
	assert.Equal(t, []byte("fake-bytes"), blob.Content)

	// A handle is consumable exactly once.
	_, err = store.Pop(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreNullHandle(t *testing.T) {
	store := NewStore(testutil.DB(t))

	id, err := store.Store("", []byte("content"))
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = store.Store("photo.jpg", nil)
	require.NoError(t, err)
	assert.Zero(t, id)

	blob, err := store.Pop(0)
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestPeekDoesNotConsume(t *testing.T) {
	store := NewStore(testutil.DB(t))
	id, err := store.Store("card.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		blob, err := store.Peek(id)
		require.NoError(t, err)
		assert.Equal(t, "card.pdf", blob.Filename)
	}

	_, err = store.Pop(id)
	require.NoError(t, err)
	_, err = store.Peek(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForgetIsIdempotent(t *testing.T) {
	store := NewStore(testutil.DB(t))
	id, err := store.Store("photo.jpg", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Forget(id))
	require.NoError(t, store.Forget(id))
	require.NoError(t, store.Forget(9999))
}

func TestCleanupDropsExpired(t *testing.T) {
	db := testutil.DB(t)
	store := NewStore(db)

	oldID, err := store.Store("old.jpg", []byte("x"))
	require.NoError(t, err)
	freshID, err := store.Store("fresh.jpg", []byte("y"))
	require.NoError(t, err)

	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, db.Model(&models.TmpBlob{}).
		Where("id = ?", oldID).
		Update("created_at", stale).Error)

	dropped, err := store.Cleanup(48 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dropped)

	_, err = store.Peek(oldID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Peek(freshID)
	assert.NoError(t, err)
}

func encodeTestImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestProcessPhotoResizesLargeImages(t *testing.T) {
	content := encodeTestImage(t, 2000, 1000, imaging.JPEG)

	out, err := ProcessPhoto(content, 4<<20, 800)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestProcessPhotoKeepsSmallImages(t *testing.T) {
	content := encodeTestImage(t, 300, 200, imaging.PNG)

	out, err := ProcessPhoto(content, 4<<20, 800)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestProcessPhotoRejectsOversize(t *testing.T) {
	content := encodeTestImage(t, 100, 100, imaging.JPEG)
	_, err := ProcessPhoto(content, 10, 800)
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
}

func TestProcessPhotoRejectsUnknownFormat(t *testing.T) {
	_, err := ProcessPhoto([]byte("GIF89a not really"), 4<<20, 800)
	assert.ErrorIs(t, err, ErrPhotoFormat)
}

func TestProcessPhotoPassesPDFThrough(t *testing.T) {
	pdf := []byte("%PDF-1.4 press card")
	out, err := ProcessPhoto(pdf, 4<<20, 800)
	require.NoError(t, err)
	assert.Equal(t, pdf, out)
}
