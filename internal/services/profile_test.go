package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/testutil"
)

func TestApplyRoutesValues(t *testing.T) {
	svc := NewProfileService(testutil.DB(t))
	user := &models.User{}
	kyc := models.NewKYCProfile()

	svc.Apply(user, kyc, &forms.Collected{
		Values: map[string]any{
			"civilite":              "Monsieur",
			"email":                 " Paul@Example.COM ",
			"first_name":            "Paul",
			"tel_mobile":            "+33 6 00 00 00 00",
			"gcu_acceptation":       true,
			"pays_zip_ville":        "FRA",
			"pays_zip_ville_detail": "FRA / 69001 Lyon",
			"presentation":          "Bonjour.",
			"langues":               []string{"Français"},
		},
		Photos: map[string]*forms.PhotoUpload{
			"photo": {Filename: "portrait.jpg", Content: []byte("jpeg")},
		},
	})

	assert.Equal(t, "M", user.Gender)
	assert.Equal(t, "paul@example.com", user.Email)
	assert.Equal(t, "Paul", user.FirstName)
	assert.Equal(t, "FRA", user.Country)
	assert.Equal(t, "69001", user.ZipCode)
	assert.Equal(t, "Lyon", user.City)
	assert.True(t, user.GCUAcceptation)
	assert.NotNil(t, user.GCUAcceptationDate)
	assert.Equal(t, "portrait.jpg", user.PhotoFilename)

	assert.Equal(t, "Bonjour.", kyc.Presentation)
	assert.Equal(t, "FRA", kyc.InfoProfessionnelle["pays_zip_ville"])
	assert.Equal(t, []string{"Français"}, kyc.InfoPersonnelle["langues"])
}

func TestApplyDropsUnknownKeys(t *testing.T) {
	svc := NewProfileService(testutil.DB(t))
	kyc := models.NewKYCProfile()

	svc.Apply(&models.User{}, kyc, &forms.Collected{
		Values: map[string]any{"champ_inconnu": "x"},
	})
	assert.False(t, kyc.HasFieldName("champ_inconnu"))
}

func TestPrefillRoundTrip(t *testing.T) {
	svc := NewProfileService(testutil.DB(t))
	user := &models.User{}
	kyc := models.NewKYCProfile()

	values := map[string]any{
		"civilite":        "Madame",
		"email":           "anne@example.com",
		"first_name":      "Anne",
		"tel_mobile":      "+33 7 00 00 00 00",
		"gcu_acceptation": true,
		"presentation":    "Présentation.",
		"langues":         []string{"Français", "Espagnol"},
	}
	svc.Apply(user, kyc, &forms.Collected{Values: values})

	prefill := svc.Prefill(user, kyc)
	for key, expected := range values {
		assert.Equal(t, expected, prefill[key], key)
	}
}

func TestSplitZipTown(t *testing.T) {
	zip, city := splitZipTown("FRA / 75001 Paris")
	assert.Equal(t, "75001", zip)
	assert.Equal(t, "Paris", city)

	zip, city = splitZipTown("BEL / 1000 Bruxelles-Ville")
	assert.Equal(t, "1000", zip)
	assert.Equal(t, "Bruxelles-Ville", city)

	zip, city = splitZipTown("")
	assert.Empty(t, zip)
	assert.Empty(t, city)
}

func TestEmailAlreadyUsedProbesBothColumns(t *testing.T) {
	db := testutil.DB(t)
	svc := NewProfileService(db)

	require.NoError(t, db.Create(&models.User{
		Email:        "jeanne@example.com",
		EmailSecours: "backup@example.com",
		FsUniquifier: "u1",
	}).Error)

	for _, email := range []string{"jeanne@example.com", "Backup@Example.com"} {
		used, err := svc.EmailAlreadyUsed(db, email, 0)
		require.NoError(t, err)
		assert.True(t, used, email)
	}

	used, err := svc.EmailAlreadyUsed(db, "libre@example.com", 0)
	require.NoError(t, err)
	assert.False(t, used)

	// The owner and their clone do not count against themselves.
	var owner models.User
	require.NoError(t, db.Where("email = ?", "jeanne@example.com").First(&owner).Error)
	used, err = svc.EmailAlreadyUsed(db, "jeanne@example.com", owner.ID)
	require.NoError(t, err)
	assert.False(t, used)
}
