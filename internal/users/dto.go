package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Phone     *string        `json:"phone,omitempty"`
	Address   *string        `json:"address,omitempty"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToDTO maps a stored user onto the transport shape.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Address:   user.Address,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Address  *string
}

// UpdateProfileInput carries optional profile updates.
type UpdateProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

// Session is the token pair handed out at login and refresh.
type Session struct {
	User         UserDTO   `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
