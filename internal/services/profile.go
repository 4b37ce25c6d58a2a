package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/ontology"
)

// ProfileService projects managed form values onto the account record
// and its profile document, and back into prefill maps for the edit
// form.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Apply writes collected values onto the user columns they own and
// routes everything else into the profile sub-documents. Passwords are
// hashed by the caller, photos land on the dedicated columns.
func (s *ProfileService) Apply(user *models.User, kyc *models.KYCProfile, collected *forms.Collected) {
	for name, value := range collected.Values {
		s.applyValue(user, kyc, name, value)
	}
	if upload, ok := collected.Photos["photo"]; ok {
		user.Photo = upload.Content
		user.PhotoFilename = upload.Filename
	}
	if upload, ok := collected.Photos["photo_carte_presse"]; ok {
		user.PhotoCartePresse = upload.Content
		user.PhotoCartePresseFilename = upload.Filename
	}
}

func (s *ProfileService) applyValue(user *models.User, kyc *models.KYCProfile, name string, value any) {
	str, _ := value.(string)
	switch name {
	case "civilite":
		user.Gender = ontology.GenderFromCivilite(str)
	case "email":
		user.Email = strings.ToLower(strings.TrimSpace(str))
	case "email_secours":
		user.EmailSecours = strings.ToLower(strings.TrimSpace(str))
	case "password":
		// Hashed and assigned by the commit path.
	case "first_name":
		user.FirstName = str
	case "last_name":
		user.LastName = str
	case "pseudo":
		user.Pseudo = str
	case "tel_mobile":
		user.TelMobile = str
	case "gcu_acceptation":
		accepted, _ := value.(bool)
		user.GCUAcceptation = accepted
		if accepted && user.GCUAcceptationDate == nil {
			now := time.Now()
			user.GCUAcceptationDate = &now
		}
	case "pays_zip_ville":
		user.Country = str
		kyc.SetValue(name, value)
	case "pays_zip_ville_detail":
		zip, city := splitZipTown(str)
		user.ZipCode = zip
		user.City = city
		kyc.SetValue(name, value)
	default:
		kyc.SetValue(name, value)
	}
}

// splitZipTown parses the stored "CC / zip town" town value.
func splitZipTown(value string) (zip, city string) {
	_, rest, found := strings.Cut(value, " / ")
	if !found {
		rest = value
	}
	zip, city, found = strings.Cut(strings.TrimSpace(rest), " ")
	if !found {
		return "", strings.TrimSpace(rest)
	}
	return zip, strings.TrimSpace(city)
}

// Prefill builds the field name to value map of the edit form, the
// inverse of Apply. Sub-document entries pass through as stored.
func (s *ProfileService) Prefill(user *models.User, kyc *models.KYCProfile) map[string]any {
	out := map[string]any{
		"civilite":        ontology.CiviliteFromGender(user.Gender),
		"email":           user.Email,
		"email_secours":   user.EmailSecours,
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"pseudo":          user.Pseudo,
		"tel_mobile":      user.TelMobile,
		"gcu_acceptation": user.GCUAcceptation,
		"presentation":    kyc.Presentation,
	}
	for _, doc := range []map[string]any{
		kyc.ShowContactDetails,
		kyc.InfoPersonnelle,
		kyc.InfoProfessionnelle,
		kyc.MatchMaking,
		kyc.InfoHobby,
		kyc.BusinessWall,
	} {
		for key, value := range doc {
			out[key] = value
		}
	}
	return out
}

// EmailAlreadyUsed probes both the login and the rescue email columns,
// on the caller's transaction when the probe runs inside a commit.
// The excluded user and their pending clone do not count.
func (s *ProfileService) EmailAlreadyUsed(db *gorm.DB, email string, excludeID uint) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var count int64
	query := db.Model(&models.User{}).
		Where("lower(email) = ? OR lower(email_secours) = ?", email, email)
	if excludeID != 0 {
		query = query.Where("id <> ? AND cloned_user_id <> ?", excludeID, excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("email probe: %w", err)
	}
	return count > 0, nil
}
