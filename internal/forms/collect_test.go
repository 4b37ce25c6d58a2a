package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/models"
)

// fakeBlobs records pops so tests can assert exactly-once consumption.
type fakeBlobs struct {
	blobs  map[uint]*models.TmpBlob
	popped []uint
}

func (f *fakeBlobs) Pop(id uint) (*models.TmpBlob, error) {
	f.popped = append(f.popped, id)
	blob, ok := f.blobs[id]
	if !ok {
		return nil, blobs.ErrNotFound
	}
	delete(f.blobs, id)
	return blob, nil
}

func TestCollectDualAndMulti(t *testing.T) {
	schema := schemaWith(
		&FieldSpec{Name: "first_name", Widget: WidgetText},
		&FieldSpec{Name: "langues", Widget: WidgetMultiSelect, Multiple: true},
		&FieldSpec{Name: "metier_principal", Widget: WidgetDetail, Dual: true},
	)
	collected, err := Collect(schema, map[string]any{
		"first_name":              "Jeanne",
		"langues":                 []any{"fr", "en"},
		"metier_principal":        "JRI",
		"metier_principal_detail": "Reportages longs",
	}, &fakeBlobs{})
	require.NoError(t, err)

	assert.Equal(t, "Jeanne", collected.Values["first_name"])
	assert.Equal(t, []string{"fr", "en"}, collected.Values["langues"])
	assert.Equal(t, "JRI", collected.Values["metier_principal"])
	assert.Equal(t, "Reportages longs", collected.Values["metier_principal_detail"])
}

func TestCollectNormalizesMissingValues(t *testing.T) {
	schema := schemaWith(
		&FieldSpec{Name: "first_name", Widget: WidgetText},
		&FieldSpec{Name: "langues", Widget: WidgetMultiSelect, Multiple: true},
		&FieldSpec{Name: "gcu", Widget: WidgetCheckbox},
	)
	collected, err := Collect(schema, map[string]any{}, &fakeBlobs{})
	require.NoError(t, err)

	assert.Equal(t, "", collected.Values["first_name"])
	assert.Equal(t, []string{}, collected.Values["langues"])
	assert.Equal(t, false, collected.Values["gcu"])
}

func TestCollectPopsPhotoBlob(t *testing.T) {
	uploads := &fakeBlobs{blobs: map[uint]*models.TmpBlob{
		7: {ID: 7, Filename: "portrait.jpg", Content: []byte("jpeg-bytes")},
	}}
	schema := schemaWith(&FieldSpec{Name: "photo", Widget: WidgetPhoto})

	collected, err := Collect(schema, map[string]any{"photo": float64(7)}, uploads)
	require.NoError(t, err)

	require.Contains(t, collected.Photos, "photo")
	assert.Equal(t, "portrait.jpg", collected.Photos["photo"].Filename)
	assert.Equal(t, []uint{7}, uploads.popped)
	// The photo never lands in the managed values.
	assert.NotContains(t, collected.Values, "photo")
}

func TestCollectSkipsNullPhotoHandle(t *testing.T) {
	uploads := &fakeBlobs{}
	schema := schemaWith(&FieldSpec{Name: "photo", Widget: WidgetPhoto})

	collected, err := Collect(schema, map[string]any{"photo": ""}, uploads)
	require.NoError(t, err)
	assert.Empty(t, collected.Photos)
	assert.Empty(t, uploads.popped)
}

func TestCollectTreatsMissingBlobAsEmpty(t *testing.T) {
	uploads := &fakeBlobs{}
	schema := schemaWith(
		&FieldSpec{Name: "first_name", Widget: WidgetText},
		&FieldSpec{Name: "photo", Widget: WidgetPhoto},
	)

	// An expired or already consumed handle does not sink the whole
	// submission, the photo simply stays empty.
	collected, err := Collect(schema, map[string]any{
		"first_name": "Jeanne",
		"photo":      float64(99),
	}, uploads)
	require.NoError(t, err)
	assert.Empty(t, collected.Photos)
	assert.Equal(t, "Jeanne", collected.Values["first_name"])
}

func TestCollectRejectsBadHandle(t *testing.T) {
	schema := schemaWith(&FieldSpec{Name: "photo", Widget: WidgetPhoto})
	_, err := Collect(schema, map[string]any{"photo": "not-a-number"}, &fakeBlobs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo")
}

func TestBlobHandleCoercion(t *testing.T) {
	for _, raw := range []any{float64(12), 12, uint(12), "12"} {
		handle, err := blobHandle(raw)
		require.NoError(t, err)
		assert.EqualValues(t, 12, handle)
	}
	handle, err := blobHandle(nil)
	require.NoError(t, err)
	assert.Zero(t, handle)

	_, err = blobHandle(float64(-1))
	assert.Error(t, err)
}
