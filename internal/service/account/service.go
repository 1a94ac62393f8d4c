// Package account handles registration and login.
package account

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/repository"
	"github.com/copasapp/copas-api/internal/utils/phone"
)

// Service contains the auth business logic.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService creates the account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// RegisterInput is the parsed registration payload.
type RegisterInput struct {
	Phone       string
	Password    string
	Name        string
	Birthdate   *time.Time
	Description string
	Gender      string
	Type        string
}

// Register creates a new active user.
//
// The phone is normalized to its national 10-digit form before both the
// uniqueness lookup and the insert, so country-code and punctuated variants
// of the same number collide.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	if in.Phone == "" || in.Password == "" || in.Name == "" || in.Birthdate == nil || in.Gender == "" {
		return nil, svcErr.Validation("phone, password, name, birthdate and gender are required")
	}

	norm := phone.Normalize(in.Phone)
	if norm == "" {
		return nil, svcErr.Validation("phone must contain digits")
	}

	existing, err := s.userRepo.GetByPhone(ctx, norm)
	if err != nil {
		s.appCtx.Logger.Error("phone lookup failed", "err", err)
		return nil, err
	}
	if existing != nil {
		return nil, svcErr.Conflict("phone already registered")
	}

	userType := in.Type
	if userType == "" {
		userType = db.TypeUser
	}
	if userType != db.TypeUser && userType != db.TypeAdmin {
		return nil, svcErr.Validation("unknown user type " + in.Type)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		State:        true,
		Name:         in.Name,
		Birthdate:    in.Birthdate,
		Description:  in.Description,
		Phone:        norm,
		PasswordHash: string(hash),
		Type:         userType,
		Gender:       in.Gender,
		Photos:       db.PhotoList{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.appCtx.Logger.Error("user insert failed", "err", err)
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates by normalized phone and password.
//
// Unknown phone and wrong password are distinct failures (404 vs 401),
// matching the external contract.
func (s *Service) Login(ctx context.Context, rawPhone, password string) (*db.User, error) {
	if rawPhone == "" || password == "" {
		return nil, svcErr.Validation("phone and password are required")
	}

	user, err := s.userRepo.GetByPhone(ctx, phone.Normalize(rawPhone))
	if err != nil {
		s.appCtx.Logger.Error("phone lookup failed", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFound("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, svcErr.Unauthorized("incorrect password")
		}
		return nil, err
	}

	return user, nil
}
