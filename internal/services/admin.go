package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/database"
	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// AdminService serves the validation queues: new registrations and
// pending major updates, in submission order.
type AdminService struct {
	db         *gorm.DB
	model      *survey.Model
	clones     *CloneService
	orgs       *OrgResolver
	dispatcher Dispatcher
}

func NewAdminService(db *gorm.DB, model *survey.Model, clones *CloneService, orgs *OrgResolver, dispatcher Dispatcher) *AdminService {
	return &AdminService{db: db, model: model, clones: clones, orgs: orgs, dispatcher: dispatcher}
}

// PendingQueue lists the accounts waiting for a decision: inactive new
// registrations and clones staging a major update.
func (s *AdminService) PendingQueue(page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	query := s.db.Model(&models.User{}).
		Where("(validation_status = ? AND active = ?) OR is_clone = ?",
			models.StatusNew, false, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := query.Preload("Profile").
		Order("submited_at").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Validate accepts a pending account. A clone is merged back into the
// live account it shadows; a new registration is activated.
func (s *AdminService) Validate(userID uint) (*models.User, error) {
	var validated *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := database.LockForUpdate(tx).Preload("Profile").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		// A clone carries the parked real email; that distinguishes a
		// pending update from a fresh registration.
		if user.EmailSafeCopy != "" {
			original, err := s.clones.Merge(tx, &user)
			if err != nil {
				return err
			}
			// The staged values may have moved the member to another
			// organisation.
			if original.Profile != nil {
				sp, err := s.model.Profile(original.Profile.ProfileID)
				if err != nil {
					return err
				}
				if err := s.orgs.Resolve(tx, original, sp, original.Profile); err != nil {
					return err
				}
			}
			validated = original
		} else {
			validated = &user
		}

		now := time.Now()
		validated.Active = true
		validated.ValidationStatus = models.StatusValidated
		validated.ValidatedAt = &now
		if err := tx.Save(validated).Error; err != nil {
			return fmt.Errorf("validate user %d: %w", validated.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(Event{
		Name:    EventAccountValidated,
		UserID:  validated.ID,
		Profile: profileCode(validated),
		At:      time.Now(),
	})
	return validated, nil
}

// Reject refuses a pending account. A clone is discarded and the live
// account stays untouched; a new registration is anonymized and
// soft-deleted, and its automatic organisation garbage collected.
func (s *AdminService) Reject(userID uint, reason string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := database.LockForUpdate(tx).Preload("Profile").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if user.EmailSafeCopy != "" {
			return s.clones.Discard(tx, &user)
		}

		orgID := user.OrganisationID
		user.Email = FakeEmail()
		user.EmailSecours = ""
		user.Active = false
		user.OrganisationID = nil
		user.ValidationStatus = "REJECTED: " + reason
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("anonymize user %d: %w", user.ID, err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("reject user %d: %w", user.ID, err)
		}
		return s.orgs.collect(tx, orgID, user.ID)
	})
	if err != nil {
		return err
	}

	s.dispatcher.Dispatch(Event{
		Name:   EventAccountRejected,
		UserID: userID,
		Detail: reason,
		At:     time.Now(),
	})
	return nil
}

func profileCode(user *models.User) string {
	if user.Profile != nil {
		return user.Profile.ProfileCode
	}
	return ""
}
