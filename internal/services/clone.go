package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/models"
)

// CloneService implements the pending-change protocol: a major update is
// staged on a shadow copy of the account until an administrator
// validates or rejects it. The live account keeps serving unchanged.
type CloneService struct {
	db *gorm.DB
}

func NewCloneService(db *gorm.DB) *CloneService {
	return &CloneService{db: db}
}

// FakeEmail generates the synthetic address parked on a clone so the
// unique email index never collides with the live account.
func FakeEmail() string {
	return fmt.Sprintf("fake_%s@example.com", strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// PendingClone returns the live clone shadowing a user, or nil.
func (s *CloneService) PendingClone(tx *gorm.DB, userID uint) (*models.User, error) {
	var clone models.User
	err := tx.Preload("Profile").
		Where("is_clone = ? AND cloned_user_id = ?", true, userID).
		First(&clone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending clone of user %d: %w", userID, err)
	}
	return &clone, nil
}

// CreateClone stages a shadow copy of the account. At most one clone is
// live per user: staging a new one discards the clone still waiting for
// validation. The pending values are applied by the caller before the
// rows are created.
func (s *CloneService) CreateClone(tx *gorm.DB, user *models.User, status string) (*models.User, error) {
	existing, err := s.PendingClone(tx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.Discard(tx, existing); err != nil {
			return nil, err
		}
	}
	if user.Profile == nil {
		return nil, fmt.Errorf("user %d has no profile to clone", user.ID)
	}

	now := time.Now()
	clone := *user
	clone.ID = 0
	clone.Email = FakeEmail()
	clone.EmailSafeCopy = user.Email
	clone.IsClone = true
	clone.ClonedUserID = user.ID
	clone.Active = false
	clone.FsUniquifier = strings.ReplaceAll(uuid.NewString(), "-", "")
	clone.ValidationStatus = status
	clone.SubmitedAt = now
	clone.ValidatedAt = nil
	clone.ModifiedAt = &now
	clone.OrganisationID = nil
	clone.Organisation = nil
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	clone.Profile = user.Profile.Clone()
	return &clone, nil
}

// Merge folds a validated clone back into the live account and removes
// it. The real email is restored from the safe copy taken at staging.
func (s *CloneService) Merge(tx *gorm.DB, clone *models.User) (*models.User, error) {
	if !clone.IsClone || clone.ClonedUserID == 0 {
		return nil, fmt.Errorf("user %d is not a clone", clone.ID)
	}
	var original models.User
	if err := tx.Preload("Profile").First(&original, clone.ClonedUserID).Error; err != nil {
		return nil, fmt.Errorf("merge target of clone %d: %w", clone.ID, err)
	}

	copyAccountFields(&original, clone)
	original.Email = clone.EmailSafeCopy
	original.EmailSafeCopy = ""
	now := time.Now()
	original.ModifiedAt = &now

	if clone.Profile != nil && original.Profile != nil {
		copyProfileFields(original.Profile, clone.Profile)
		if err := tx.Save(original.Profile).Error; err != nil {
			return nil, fmt.Errorf("merge profile of user %d: %w", original.ID, err)
		}
	}
	if err := tx.Save(&original).Error; err != nil {
		return nil, fmt.Errorf("merge user %d: %w", original.ID, err)
	}
	if err := s.purge(tx, clone); err != nil {
		return nil, err
	}
	return &original, nil
}

// Discard retires a clone without applying it: the row is soft-deleted
// so the staged values stay inspectable, and it stops shadowing the
// live account.
func (s *CloneService) Discard(tx *gorm.DB, clone *models.User) error {
	if err := tx.Delete(clone).Error; err != nil {
		return fmt.Errorf("discard clone %d: %w", clone.ID, err)
	}
	return nil
}

// purge removes a merged clone and its staged profile for good.
func (s *CloneService) purge(tx *gorm.DB, clone *models.User) error {
	if clone.Profile != nil {
		if err := tx.Unscoped().Delete(clone.Profile).Error; err != nil {
			return fmt.Errorf("purge clone profile: %w", err)
		}
	}
	if err := tx.Unscoped().Delete(clone).Error; err != nil {
		return fmt.Errorf("purge clone %d: %w", clone.ID, err)
	}
	return nil
}

// copyAccountFields transfers the staged account values, leaving the
// identity, lifecycle and bookkeeping columns of the target alone.
func copyAccountFields(dst, src *models.User) {
	dst.EmailSecours = src.EmailSecours
	dst.Gender = src.Gender
	dst.FirstName = src.FirstName
	dst.LastName = src.LastName
	dst.Pseudo = src.Pseudo
	dst.Photo = src.Photo
	dst.PhotoFilename = src.PhotoFilename
	dst.PhotoCartePresse = src.PhotoCartePresse
	dst.PhotoCartePresseFilename = src.PhotoCartePresseFilename
	dst.TelMobile = src.TelMobile
	dst.Country = src.Country
	dst.Region = src.Region
	dst.City = src.City
	dst.ZipCode = src.ZipCode
	dst.Latitude = src.Latitude
	dst.Longitude = src.Longitude
}

func copyProfileFields(dst, src *models.KYCProfile) {
	staged := src.Clone()
	dst.ProfileID = staged.ProfileID
	dst.ProfileCode = staged.ProfileCode
	dst.ProfileLabel = staged.ProfileLabel
	dst.ProfileCommunity = staged.ProfileCommunity
	dst.ContactType = staged.ContactType
	dst.DisplayLevel = staged.DisplayLevel
	dst.Presentation = staged.Presentation
	dst.ShowContactDetails = staged.ShowContactDetails
	dst.InfoPersonnelle = staged.InfoPersonnelle
	dst.InfoProfessionnelle = staged.InfoProfessionnelle
	dst.MatchMaking = staged.MatchMaking
	dst.InfoHobby = staged.InfoHobby
	dst.BusinessWall = staged.BusinessWall
}
