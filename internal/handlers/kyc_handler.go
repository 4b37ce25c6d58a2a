package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/config"
	"github.com/aipress24/kyc-engine/internal/dto"
	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/middleware"
	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/services"
	"github.com/aipress24/kyc-engine/internal/survey"
)

type KYCHandler struct {
	cfg      *config.Config
	db       *gorm.DB
	model    *survey.Model
	builder  *forms.Builder
	registry *ontology.Registry
	uploads  *blobs.Store
	profiles *services.ProfileService
	commit   *services.CommitService
	vis      *services.VisibilityService
}

func NewKYCHandler(
	cfg *config.Config,
	db *gorm.DB,
	model *survey.Model,
	builder *forms.Builder,
	registry *ontology.Registry,
	uploads *blobs.Store,
	profiles *services.ProfileService,
	commit *services.CommitService,
	vis *services.VisibilityService,
) *KYCHandler {
	return &KYCHandler{
		cfg:      cfg,
		db:       db,
		model:    model,
		builder:  builder,
		registry: registry,
		uploads:  uploads,
		profiles: profiles,
		commit:   commit,
		vis:      vis,
	}
}

// Communities lists the survey profiles grouped by community, for the
// wizard landing page.
func (h *KYCHandler) Communities(c *fiber.Ctx) error {
	grouped := h.model.Communities()
	out := make([]dto.CommunityResponse, 0, len(survey.CommunityOrder))
	for _, community := range survey.CommunityOrder {
		profiles := grouped[community]
		if len(profiles) == 0 {
			continue
		}
		entry := dto.CommunityResponse{Community: community}
		for _, p := range profiles {
			entry.Profiles = append(entry.Profiles, dto.ProfileSummary{
				ID: p.ID, Code: p.Code, Label: p.Description,
			})
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

// Form renders the registration form of one survey profile.
func (h *KYCHandler) Form(c *fiber.Ctx) error {
	sp, err := h.model.Profile(c.Params("profile_id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown profile",
		})
	}
	schema, err := h.builder.Build(sp, nil, forms.BuildOptions{})
	if err != nil {
		return err
	}
	return c.JSON(schema)
}

// EditForm renders the authenticated member's settings form, prefilled.
func (h *KYCHandler) EditForm(c *fiber.Ctx) error {
	user, err := h.actor(c)
	if err != nil {
		return unauthorized(c)
	}
	sp, err := h.model.Profile(user.Profile.ProfileID)
	if err != nil {
		return err
	}
	prefill := h.profiles.Prefill(user, user.Profile)
	schema, err := h.builder.Build(sp, prefill, forms.BuildOptions{ModeEdition: true})
	if err != nil {
		return err
	}
	return c.JSON(schema)
}

// Register handles the anonymous wizard submission.
func (h *KYCHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.commit.SubmitRegistration(req.ProfileID, req.Values)
	if err != nil {
		var errs forms.ValidationErrors
		if errors.As(err, &errs) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
				Error: true, Message: "Validation failed", Fields: errs,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		UserID: user.ID,
		Status: user.ValidationStatus,
	})
}

// Update handles the authenticated profile edit.
func (h *KYCHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sig, err := h.commit.SubmitUpdate(userID, req.Values)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		default:
			var errs forms.ValidationErrors
			if errors.As(err, &errs) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
					Error: true, Message: "Validation failed", Fields: errs,
				})
			}
			return err
		}
	}

	return c.JSON(dto.SubmitResponse{
		UserID:  userID,
		Status:  sig.Status(),
		Pending: sig.IsMajor(),
		Fields:  sig.CriticalMoved,
	})
}

// Upload parks a wizard file upload and returns its handle.
func (h *KYCHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing file",
		})
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	processed, err := blobs.ProcessPhoto(content, h.cfg.MaxPhotoBytes, h.cfg.PhotoBoundPx)
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, blobs.ErrPhotoTooLarge) {
			status = fiber.StatusRequestEntityTooLarge
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	handle, err := h.uploads.Store(header.Filename, processed)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{Handle: handle})
}

// Abandon drops a parked upload the wizard no longer needs.
func (h *KYCHandler) Abandon(c *fiber.Ctx) error {
	handle, err := strconv.ParseUint(c.Params("handle"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid handle",
		})
	}
	if err := h.uploads.Forget(uint(handle)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Upload discarded"})
}

// Towns serves the zip/town list of one country for the dependent
// select of the address field.
func (h *KYCHandler) Towns(c *fiber.Ctx) error {
	entries, err := h.registry.Towns(c.Params("country"))
	if err != nil {
		return err
	}
	out := make([]dto.ChoiceResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ChoiceResponse{Value: e.Value, Label: e.Label})
	}
	return c.JSON(out)
}

// PublicProfile renders the directory view of a member.
func (h *KYCHandler) PublicProfile(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	var target models.User
	err = h.db.Preload("Profile").Preload("Organisation").
		Where("is_clone = ? AND active = ?", false, true).
		First(&target, uint(targetID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}
	if err != nil {
		return err
	}

	view, err := h.vis.Render(&target, h.viewerContactType(c), maskFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// maskFromQuery reads the optional redaction mask from the request:
// ?mask=email,tel_mobile&mask_story=... Returns nil when absent.
func maskFromQuery(c *fiber.Ctx) *services.Mask {
	raw := c.Query("mask")
	if raw == "" {
		return nil
	}
	fields := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			fields[name] = true
		}
	}
	return &services.Mask{Fields: fields, Story: c.Query("mask_story")}
}

// Photo serves the member's profile photo referenced by the directory
// view.
func (h *KYCHandler) Photo(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	var target models.User
	err = h.db.Select("id", "photo", "photo_filename").
		Where("is_clone = ? AND active = ?", false, true).
		First(&target, uint(targetID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(target.Photo) == 0) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "No photo",
		})
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+target.PhotoFilename+`"`)
	return c.Send(target.Photo)
}

// actor loads the authenticated live account with its profile.
func (h *KYCHandler) actor(c *fiber.Ctx) (*models.User, error) {
	userID, err := middleware.UserID(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = h.db.Preload("Profile").
		Where("is_clone = ?", false).
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, errors.New("no profile")
	}
	return &user, nil
}

// viewerContactType resolves the contact type of the viewer, or "" for
// anonymous requests.
func (h *KYCHandler) viewerContactType(c *fiber.Ctx) string {
	user, err := h.actor(c)
	if err != nil {
		return ""
	}
	return user.Profile.ContactType
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
