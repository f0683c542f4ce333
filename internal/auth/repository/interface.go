package repository

import (
	authdomain "cleanagent-backend/internal/auth/domain"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(user *authdomain.User) error
	Update(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
}
