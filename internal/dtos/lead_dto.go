package dtos

import (
	"strings"

	"github.com/justsurfingit/lead-labeler/internal/extract"
)

// LeadRequest is the body of POST /label_fetch. Either Lead carries a raw
// feed or the embedded fields are already extracted.
type LeadRequest struct {
	Lead        string `json:"lead"`
	ModelName   string `json:"model_name"`
	DBModelName string `json:"db_model_name"`

	extract.Fields
}

// Model returns the requested model name; db_model_name is the older key.
func (r *LeadRequest) Model() string {
	if name := strings.TrimSpace(r.ModelName); name != "" {
		return name
	}
	return strings.TrimSpace(r.DBModelName)
}

// IsRaw reports whether the request carries a raw feed.
func (r *LeadRequest) IsRaw() bool {
	return strings.TrimSpace(r.Lead) != ""
}

type ModelDeleteRequest struct {
	ModelName   string `json:"model_name"`
	DBModelName string `json:"db_model_name"`
}

func (r *ModelDeleteRequest) Model() string {
	if name := strings.TrimSpace(r.ModelName); name != "" {
		return name
	}
	return strings.TrimSpace(r.DBModelName)
}

type SignupRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
