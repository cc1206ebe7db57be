package domain

import (
	"time"

	"github.com/lumiskin/lumiskin-api/internal/utils"
)

type Customer struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerInfo is the customer shape returned to the client. analysisCount is
// derived (completed analyses only), never stored.
type CustomerInfo struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	AnalysisCount int64  `json:"analysisCount"`
}

func (c *Customer) ToInfo(analysisCount int64) *CustomerInfo {
	return &CustomerInfo{
		ID:            c.ID,
		Email:         c.Email,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Phone:         c.Phone,
		AnalysisCount: analysisCount,
	}
}

func (r *RegisterRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
	r.FirstName = utils.NormalizeString(r.FirstName)
	r.LastName = utils.NormalizeString(r.LastName)
	r.Phone = utils.NormalizePhone(r.Phone)
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return ValidationError("email is required")
	}
	if !utils.IsValidEmail(r.Email) {
		return ValidationError("invalid email format")
	}
	if len(r.Password) < 8 {
		return ValidationError("password must be at least 8 characters")
	}
	if r.FirstName == "" {
		return ValidationError("first name is required")
	}
	if r.Phone != "" && !utils.IsValidPhone(r.Phone) {
		return ValidationError("invalid phone number")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return ValidationError("email and password are required")
	}
	return nil
}
