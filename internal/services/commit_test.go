package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/models"
)

func TestSubmitRegistrationCreatesInactiveAccount(t *testing.T) {
	f := newFixture(t)

	user, err := f.commit.SubmitRegistration("P001", registrationValues())
	require.NoError(t, err)

	assert.False(t, user.Active)
	assert.Equal(t, models.StatusNew, user.ValidationStatus)
	assert.Equal(t, "jeanne@example.com", user.Email)
	assert.Equal(t, "F", user.Gender)
	assert.Equal(t, "Jeanne", user.FirstName)
	assert.Equal(t, "FRA", user.Country)
	assert.Equal(t, "75001", user.ZipCode)
	assert.Equal(t, "Paris", user.City)
	assert.NotEmpty(t, user.FsUniquifier)
	assert.True(t, user.GCUAcceptation)
	require.NotNil(t, user.GCUAcceptationDate)

	// The password is stored hashed, never in clear.
	assert.NotEqual(t, "s3cret-pass!", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass!")))

	require.NotNil(t, user.Profile)
	assert.Equal(t, "PM_JR_PIG", user.Profile.ProfileCode)
	assert.Equal(t, "JOURNALISTE", user.Profile.ContactType)
	assert.Equal(t, "Pigiste indépendante.", user.Profile.Presentation)
	assert.Equal(t, "Gazette du Centre", user.Profile.GetFirstValue("nom_media"))

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	require.Len(t, f.events.events, 1)
	assert.Equal(t, EventRegistrationSubmitted, f.events.events[0].Name)
	assert.Equal(t, user.ID, f.events.events[0].UserID)
}

func TestSubmitRegistrationResolvesAutoOrganisation(t *testing.T) {
	f := newFixture(t)

	user, err := f.commit.SubmitRegistration("P001", registrationValues())
	require.NoError(t, err)

	require.NotNil(t, user.OrganisationID)
	var org models.Organisation
	require.NoError(t, f.db.First(&org, *user.OrganisationID).Error)
	assert.Equal(t, "Gazette du Centre", org.Name)
	assert.Equal(t, models.OrgTypeAuto, org.Type)
	require.NotNil(t, org.CompositeKey)
	assert.Equal(t, AutoKey(&org), *org.CompositeKey)
	assert.Equal(t, "FRA", org.PaysZipVille)
}

func TestSubmitRegistrationValidationErrors(t *testing.T) {
	f := newFixture(t)

	values := registrationValues()
	delete(values, "first_name")
	values["email"] = "not-an-email"
	values["civilite"] = "Autre"

	_, err := f.commit.SubmitRegistration("P001", values)
	var errs forms.ValidationErrors
	require.ErrorAs(t, err, &errs)

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["first_name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["civilite"])

	// Nothing was created.
	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitRegistrationRejectsUsedEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.commit.SubmitRegistration("P001", registrationValues())
	require.NoError(t, err)

	values := registrationValues()
	values["nom_media"] = "Autre Gazette"
	_, err = f.commit.SubmitRegistration("P001", values)

	var errs forms.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestSubmitRegistrationConsumesPhotoBlob(t *testing.T) {
	f := newFixture(t)

	handle, err := f.blobs.Store("portrait.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	values := registrationValues()
	values["photo"] = handle
	user, err := f.commit.SubmitRegistration("P001", values)
	require.NoError(t, err)

	assert.Equal(t, []byte("jpeg-bytes"), user.Photo)
	assert.Equal(t, "portrait.jpg", user.PhotoFilename)

	// Consumed exactly once.
	_, err = f.blobs.Peek(handle)
	assert.Error(t, err)
}

func registeredUser(t *testing.T, f *fixture) *models.User {
	t.Helper()
	user, err := f.commit.SubmitRegistration("P001", registrationValues())
	require.NoError(t, err)
	validated, err := f.admin.Validate(user.ID)
	require.NoError(t, err)
	return validated
}

func TestSubmitUpdateMinorAppliesImmediately(t *testing.T) {
	f := newFixture(t)
	user := registeredUser(t, f)

	sig, err := f.commit.SubmitUpdate(user.ID, map[string]any{
		"tel_mobile": "+33 7 98 76 54 32",
	})
	require.NoError(t, err)
	assert.Equal(t, ChangeMinor, sig.Level)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "+33 7 98 76 54 32", reloaded.TelMobile)
	assert.NotNil(t, reloaded.ModifiedAt)
	assert.NotNil(t, reloaded.ValidatedAt)
	// Still active, flagged as a minor update, no clone in sight.
	assert.True(t, reloaded.Active)
	assert.Equal(t, models.StatusMinorUpdate, reloaded.ValidationStatus)
	var clones int64
	require.NoError(t, f.db.Model(&models.User{}).Where("is_clone = ?", true).Count(&clones).Error)
	assert.Zero(t, clones)

	assert.Contains(t, f.events.names(), EventUpdateApplied)
}

func TestSubmitUpdateNoChangeIsSilent(t *testing.T) {
	f := newFixture(t)
	user := registeredUser(t, f)
	before := f.events.names()

	sig, err := f.commit.SubmitUpdate(user.ID, map[string]any{
		"tel_mobile": "+33 6 12 34 56 78",
	})
	require.NoError(t, err)
	assert.Equal(t, ChangeNone, sig.Level)
	assert.Equal(t, before, f.events.names())
}

func TestSubmitUpdateMajorStagesClone(t *testing.T) {
	f := newFixture(t)
	user := registeredUser(t, f)

	sig, err := f.commit.SubmitUpdate(user.ID, map[string]any{
		"nom_media": "Canard Libre",
	})
	require.NoError(t, err)
	assert.Equal(t, ChangeMajor, sig.Level)
	assert.Equal(t, []string{"nom_media"}, sig.CriticalMoved)

	// The live account keeps serving unchanged.
	var live models.User
	require.NoError(t, f.db.Preload("Profile").First(&live, user.ID).Error)
	assert.True(t, live.Active)
	assert.Equal(t, "jeanne@example.com", live.Email)
	assert.Equal(t, "Gazette du Centre", live.Profile.GetFirstValue("nom_media"))

	// The clone parks the pending values under a synthetic email.
	var clone models.User
	require.NoError(t, f.db.Preload("Profile").
		Where("is_clone = ? AND cloned_user_id = ?", true, user.ID).
		First(&clone).Error)
	assert.Contains(t, clone.Email, "fake_")
	assert.Equal(t, "jeanne@example.com", clone.EmailSafeCopy)
	assert.False(t, clone.Active)
	assert.Equal(t, models.StatusMajorUpdatePrefix+"nom_media", clone.ValidationStatus)
	assert.Equal(t, "Canard Libre", clone.Profile.GetFirstValue("nom_media"))

	assert.Contains(t, f.events.names(), EventUpdatePending)

	// The pending event names the staged record.
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	last := f.events.events[len(f.events.events)-1]
	require.Equal(t, EventUpdatePending, last.Name)
	assert.Equal(t, user.ID, last.UserID)
	assert.Equal(t, clone.ID, last.CloneID)
}

func TestSubmitUpdateSecondMajorReplacesPendingClone(t *testing.T) {
	f := newFixture(t)
	user := registeredUser(t, f)

	_, err := f.commit.SubmitUpdate(user.ID, map[string]any{"nom_media": "Canard Libre"})
	require.NoError(t, err)
	var first models.User
	require.NoError(t, f.db.Where("is_clone = ? AND cloned_user_id = ?", true, user.ID).
		First(&first).Error)

	_, err = f.commit.SubmitUpdate(user.ID, map[string]any{"nom_media": "Encore Autre"})
	require.NoError(t, err)

	// Exactly one pending clone, carrying the latest values.
	var clone models.User
	require.NoError(t, f.db.Preload("Profile").
		Where("is_clone = ? AND cloned_user_id = ?", true, user.ID).
		First(&clone).Error)
	assert.NotEqual(t, first.ID, clone.ID)
	assert.Equal(t, "Encore Autre", clone.Profile.GetFirstValue("nom_media"))

	// The superseded clone is retired, not purged.
	var retired models.User
	require.NoError(t, f.db.Unscoped().First(&retired, first.ID).Error)
	assert.True(t, retired.DeletedAt.Valid)
}

func TestSubmitUpdateConsumesPhotoBlob(t *testing.T) {
	f := newFixture(t)
	user := registeredUser(t, f)

	handle, err := f.blobs.Store("nouveau.jpg", []byte("new-jpeg"))
	require.NoError(t, err)

	sig, err := f.commit.SubmitUpdate(user.ID, map[string]any{"photo": handle})
	require.NoError(t, err)
	// A new photo alone moves no managed value, it still lands.
	assert.Equal(t, ChangeNone, sig.Level)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, []byte("new-jpeg"), reloaded.Photo)
	assert.Equal(t, "nouveau.jpg", reloaded.PhotoFilename)

	// Consumed exactly once.
	_, err = f.blobs.Peek(handle)
	assert.Error(t, err)
}

func TestSubmitUpdateUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.commit.SubmitUpdate(4242, map[string]any{"tel_mobile": "+33 1 00 00 00 00"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClassifierSeparatesMinorAndMajor(t *testing.T) {
	model := testModel()
	profile, err := model.Profile("P001")
	require.NoError(t, err)

	old := map[string]any{
		"tel_mobile": "+33 6 00 00 00 01",
		"nom_media":  "Gazette du Centre",
		"langues":    []string{"Français"},
	}

	sig := Classify(profile, old, map[string]any{"tel_mobile": "+33 6 00 00 00 02"})
	assert.Equal(t, ChangeMinor, sig.Level)
	assert.Empty(t, sig.CriticalMoved)

	sig = Classify(profile, old, map[string]any{
		"nom_media": "Canard Libre",
		"email":     "new@example.com",
	})
	assert.Equal(t, ChangeMajor, sig.Level)
	assert.Equal(t, []string{"email", "nom_media"}, sig.CriticalMoved)
	assert.Equal(t, models.StatusMajorUpdatePrefix+"email, nom_media", sig.Status())

	sig = Classify(profile, old, map[string]any{"langues": []any{"Français"}})
	assert.Equal(t, ChangeNone, sig.Level)
}

func TestClassifierBusinessWallTriggersAreCritical(t *testing.T) {
	model := testModel()
	profile, err := model.Profile("P001")
	require.NoError(t, err)

	sig := Classify(profile, map[string]any{"trigger_media_media": false},
		map[string]any{"trigger_media_media": true})
	assert.Equal(t, ChangeMajor, sig.Level)
}
