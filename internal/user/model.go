package user

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateUserRequest payload of creation.
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	Email    string `json:"email"    binding:"required,email"      example:"jane@shop.test"`
	Password string `json:"password" binding:"required,min=8"      example:"s3cret-pass"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin" example:"user"`
}

// UpdateUserRequest payload of partial update; empty fields are kept.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	Email    string `json:"email"    binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}
