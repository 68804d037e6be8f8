package service

import (
	"context"
	"strings"

	"innercircle/internal/models"
	"innercircle/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns every user for the trusting login picker.
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserListEntry, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.UserListEntry, 0, len(users))
	for _, u := range users {
		e := models.UserListEntry{ID: u.ID, Name: u.Name}
		if u.Email != nil {
			e.Email = *u.Email
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SessionForID returns the session identity of user id, or nil when there
// is no such user.
func (s *UserService) SessionForID(ctx context.Context, id uint) (*models.Session, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, "NOT_FOUND") {
			return nil, nil
		}
		return nil, err
	}
	return sessionFor(user), nil
}

// SessionForEmail returns the session identity of the user with email, or
// nil when nobody has that address.
func (s *UserService) SessionForEmail(ctx context.Context, email string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	return sessionFor(user), nil
}

func sessionFor(u *models.User) *models.Session {
	s := &models.Session{UserID: u.ID, Name: u.Name}
	if u.Email != nil {
		s.Email = *u.Email
	}
	return s
}
