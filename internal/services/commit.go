package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/database"
	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// ErrUserNotFound is returned for commits against a missing account.
var ErrUserNotFound = errors.New("user not found")

// CommitService runs the two write paths of the wizard: the anonymous
// registration and the authenticated profile update. Each commit is a
// single transaction over the user row, the profile row, the blob pops
// and the organisation resolution.
type CommitService struct {
	db         *gorm.DB
	model      *survey.Model
	builder    *forms.Builder
	uploads    *blobs.Store
	profiles   *ProfileService
	clones     *CloneService
	orgs       *OrgResolver
	dispatcher Dispatcher
}

func NewCommitService(
	db *gorm.DB,
	model *survey.Model,
	builder *forms.Builder,
	uploads *blobs.Store,
	profiles *ProfileService,
	clones *CloneService,
	orgs *OrgResolver,
	dispatcher Dispatcher,
) *CommitService {
	return &CommitService{
		db:         db,
		model:      model,
		builder:    builder,
		uploads:    uploads,
		profiles:   profiles,
		clones:     clones,
		orgs:       orgs,
		dispatcher: dispatcher,
	}
}

// SubmitRegistration creates an inactive account from an anonymous
// wizard submission. The account waits in the admin queue with status
// NEW until validated.
func (s *CommitService) SubmitRegistration(profileID string, values map[string]any) (*models.User, error) {
	sp, err := s.model.Profile(profileID)
	if err != nil {
		return nil, err
	}
	schema, err := s.builder.Build(sp, nil, forms.BuildOptions{})
	if err != nil {
		return nil, err
	}
	if errs := s.validate(s.db, schema, values, 0); len(errs) > 0 {
		return nil, errs
	}

	user := &models.User{
		ValidationStatus: models.StatusNew,
		FsUniquifier:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		SubmitedAt:       time.Now(),
	}
	kyc := models.NewKYCProfile()
	applyProfileIdentity(kyc, sp)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		collected, err := forms.Collect(schema, values, s.uploads.WithTx(tx))
		if err != nil {
			return err
		}
		s.profiles.Apply(user, kyc, collected)
		if password, _ := values["password"].(string); password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user.Password = string(hashed)
		}
		if err := s.orgs.Resolve(tx, user, sp, kyc); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return forms.ValidationErrors{{Field: "email", Message: "adresse email déjà utilisée"}}
			}
			return fmt.Errorf("create user: %w", err)
		}
		kyc.UserID = user.ID
		if err := tx.Create(kyc).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		user.Profile = kyc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(Event{
		Name:    EventRegistrationSubmitted,
		UserID:  user.ID,
		Profile: kyc.ProfileCode,
		At:      time.Now(),
	})
	return user, nil
}

// SubmitUpdate applies an authenticated member's changes. Minor changes
// land immediately; a major change is staged on a clone and waits for
// admin validation.
func (s *CommitService) SubmitUpdate(userID uint, values map[string]any) (Significance, error) {
	var (
		sig     Significance
		cloneID uint
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := database.LockForUpdate(tx).Preload("Profile").
			Where("is_clone = ?", false).
			First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.Profile == nil {
			return fmt.Errorf("user %d has no profile", user.ID)
		}

		sp, err := s.model.Profile(user.Profile.ProfileID)
		if err != nil {
			return err
		}
		prefill := s.profiles.Prefill(&user, user.Profile)
		schema, err := s.builder.Build(sp, prefill, forms.BuildOptions{ModeEdition: true})
		if err != nil {
			return err
		}
		if errs := s.validate(tx, schema, merged(prefill, values), user.ID); len(errs) > 0 {
			return errs
		}

		collected, err := forms.Collect(schema, merged(prefill, values), s.uploads.WithTx(tx))
		if err != nil {
			return err
		}
		sig = Classify(sp, prefill, submittedOnly(collected, values))
		switch {
		case sig.Level == ChangeNone && len(collected.Photos) == 0:
			return nil
		case sig.IsMajor():
			clone, err := s.stageMajor(tx, &user, sp, collected, sig)
			if err != nil {
				return err
			}
			cloneID = clone.ID
			return nil
		default:
			return s.applyMinor(tx, &user, sp, collected)
		}
	})
	if err != nil {
		return Significance{}, err
	}

	switch sig.Level {
	case ChangeMajor:
		s.dispatcher.Dispatch(Event{
			Name:    EventUpdatePending,
			UserID:  userID,
			CloneID: cloneID,
			Detail:  strings.Join(sig.CriticalMoved, ", "),
			At:      time.Now(),
		})
	case ChangeMinor:
		s.dispatcher.Dispatch(Event{
			Name:   EventUpdateApplied,
			UserID: userID,
			At:     time.Now(),
		})
	}
	return sig, nil
}

// applyMinor writes the changes straight onto the live account. The
// account stays active and its status reflects the silent merge.
func (s *CommitService) applyMinor(tx *gorm.DB, user *models.User, sp *survey.Profile, collected *forms.Collected) error {
	s.profiles.Apply(user, user.Profile, collected)
	now := time.Now()
	user.ModifiedAt = &now
	user.ValidatedAt = &now
	user.Active = true
	user.ValidationStatus = models.StatusMinorUpdate
	if err := s.orgs.Resolve(tx, user, sp, user.Profile); err != nil {
		return err
	}
	if err := tx.Save(user.Profile).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := tx.Save(user).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// stageMajor parks the changes on a clone pending admin validation. A
// clone already waiting is replaced.
func (s *CommitService) stageMajor(tx *gorm.DB, user *models.User, sp *survey.Profile, collected *forms.Collected, sig Significance) (*models.User, error) {
	clone, err := s.clones.CreateClone(tx, user, sig.Status())
	if err != nil {
		return nil, err
	}
	s.profiles.Apply(clone, clone.Profile, collected)

	kyc := clone.Profile
	clone.Profile = nil
	if err := tx.Create(clone).Error; err != nil {
		return nil, fmt.Errorf("create clone: %w", err)
	}
	kyc.UserID = clone.ID
	if err := tx.Create(kyc).Error; err != nil {
		return nil, fmt.Errorf("create clone profile: %w", err)
	}
	clone.Profile = kyc
	return clone, nil
}

func (s *CommitService) validate(db *gorm.DB, schema *forms.FormSchema, values map[string]any, excludeID uint) forms.ValidationErrors {
	errs := forms.Validate(schema, values)
	for _, name := range []string{"email", "email_secours"} {
		if schema.Field(name) == nil {
			continue
		}
		email, _ := values[name].(string)
		if email == "" {
			continue
		}
		used, err := s.profiles.EmailAlreadyUsed(db, email, excludeID)
		if err != nil {
			errs = append(errs, forms.FieldError{Field: name, Message: "vérification impossible"})
			continue
		}
		if used {
			errs = append(errs, forms.FieldError{Field: name, Message: "adresse email déjà utilisée"})
		}
	}
	return errs
}

func applyProfileIdentity(kyc *models.KYCProfile, sp *survey.Profile) {
	kyc.ProfileID = sp.ID
	kyc.ProfileCode = sp.Code
	kyc.ProfileLabel = sp.Description
	kyc.ProfileCommunity = sp.Community
	kyc.ContactType = sp.ContactType
}

// merged overlays the submission on the stored values so partial posts
// keep the untouched fields.
func merged(prefill, values map[string]any) map[string]any {
	out := make(map[string]any, len(prefill)+len(values))
	for k, v := range prefill {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

// submittedOnly narrows the collected values to the keys the member
// actually posted, so classification ignores identical carry-over.
func submittedOnly(collected *forms.Collected, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k := range values {
		if v, ok := collected.Values[k]; ok {
			out[k] = v
		}
	}
	return out
}
