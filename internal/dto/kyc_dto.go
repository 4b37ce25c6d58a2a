package dto

import (
	"github.com/aipress24/kyc-engine/internal/forms"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries every field failure of a submission.
type ValidationErrorResponse struct {
	Error   bool               `json:"error"`
	Message string             `json:"message"`
	Fields  []forms.FieldError `json:"fields"`
}

type RegisterRequest struct {
	ProfileID string         `json:"profile_id"`
	Values    map[string]any `json:"values"`
}

type UpdateRequest struct {
	Values map[string]any `json:"values"`
}

type SubmitResponse struct {
	UserID  uint     `json:"user_id"`
	Status  string   `json:"status"`
	Pending bool     `json:"pending"`
	Fields  []string `json:"pending_fields,omitempty"`
}

type UploadResponse struct {
	Handle uint `json:"handle"`
}

type ProfileSummary struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CommunityResponse struct {
	Community string           `json:"community"`
	Profiles  []ProfileSummary `json:"profiles"`
}

type ChoiceResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type QueueEntry struct {
	ID               uint   `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	ProfileCode      string `json:"profile_code"`
	ValidationStatus string `json:"validation_status"`
	IsClone          bool   `json:"is_clone"`
	ClonedUserID     uint   `json:"cloned_user_id,omitempty"`
	SubmitedAt       string `json:"submited_at"`
}

type QueueResponse struct {
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Entries []QueueEntry `json:"entries"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Profiles  int    `json:"profiles"`
}
