// Package profile implements user CRUD, candidate discovery and the photo
// upload/delete flows.
package profile

import (
	"context"
	"io"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/repository"
	"github.com/copasapp/copas-api/internal/utils/phone"
)

// Service contains the profile business logic.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService creates the profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Get loads one user by id.
func (s *Service) Get(ctx context.Context, id uint64) (*db.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateInput is the admin user-creation payload.
type CreateInput struct {
	Name        string
	Phone       string
	Password    string
	Birthdate   *time.Time
	Description string
	Gender      string
	Type        string
}

// Create inserts a user via the admin CRUD surface. Same normalization and
// uniqueness rules as registration.
func (s *Service) Create(ctx context.Context, in CreateInput) (*db.User, error) {
	if in.Name == "" || in.Phone == "" || in.Password == "" {
		return nil, svcErr.Validation("name, phone and password are required")
	}

	norm := phone.Normalize(in.Phone)
	if norm == "" {
		return nil, svcErr.Validation("phone must contain digits")
	}

	existing, err := s.userRepo.GetByPhone(ctx, norm)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, svcErr.Conflict("phone already registered")
	}

	userType := in.Type
	if userType == "" {
		userType = db.TypeUser
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
		return nil, err
	}
	return user, nil
}

// UpdateInput carries optional field updates; nil pointers keep the stored
// value (COALESCE semantics).
type UpdateInput struct {
	Name        *string
	Birthdate   *time.Time
	Description *string
	Type        *string
}

// Update mutates a user's profile fields.
func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (*db.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Birthdate != nil {
		user.Birthdate = in.Birthdate
	}
	if in.Description != nil {
		user.Description = *in.Description
	}
	if in.Type != nil {
		user.Type = *in.Type
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user row, then best-effort removes the user's photo
// directory. A failed directory removal is logged, never surfaced: the
// database already forgot the user.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.appCtx.Photos.RemoveUserDir(id); err != nil {
		s.appCtx.Logger.Warn("failed to remove photo dir", "user_id", id, "err", err)
	}
	return nil
}

// Available lists candidate profiles for the requester. The route exposes
// a raw limit/offset pair rather than page numbers.
func (s *Service) Available(ctx context.Context, userID uint64, limit, offset int) ([]db.User, error) {
	if userID == 0 {
		return nil, svcErr.Validation("userId is required")
	}
	users, err := s.userRepo.ListAvailable(ctx, userID, limit, offset)
	if err != nil {
		s.appCtx.Logger.Error("ListAvailable failed", "err", err)
		return nil, err
	}
	if users == nil {
		users = []db.User{}
	}
	return users, nil
}

// UploadPhoto runs the photo pipeline for one upload.
//
// Behavior:
//   - Cheap cap pre-check before any conversion work.
//   - Conversion and storage via the photo store.
//   - Atomic append with commit-time cap re-validation; when the append
//     fails for any reason the freshly written file is removed, so a failed
//     request leaves no orphaned bytes.
func (s *Service) UploadPhoto(ctx context.Context, userID uint64, upload io.Reader) (db.PhotoList, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	max := s.appCtx.Config.Uploads.MaxPhotos
	if len(user.Photos) >= max {
		return nil, svcErr.QuotaExceeded("photo limit reached")
	}

	ref, err := s.appCtx.Photos.SaveUserPhoto(userID, upload)
	if err != nil {
		return nil, err
	}

	photos, err := s.userRepo.AppendPhoto(ctx, userID, ref, max)
	if err != nil {
		if _, abs, rerr := s.appCtx.Photos.Resolve(ref); rerr == nil {
			if rmErr := s.appCtx.Photos.Remove(abs); rmErr != nil {
				s.appCtx.Logger.Warn("failed to remove unreferenced photo", "path", ref, "err", rmErr)
			}
		}
		return nil, err
	}

	s.appCtx.Logger.Info("photo uploaded", "user_id", userID, "ref", ref)
	return photos, nil
}

// DeletePhoto removes a photo reference and best-effort deletes the file.
//
// The store update is authoritative: a failure to delete the physical file
// is logged and swallowed. Deleting a reference the user does not have is a
// successful no-op.
func (s *Service) DeletePhoto(ctx context.Context, userID uint64, clientPath string) (db.PhotoList, error) {
	rel, abs, err := s.appCtx.Photos.Resolve(clientPath)
	if err != nil {
		return nil, err
	}

	photos, removed, err := s.userRepo.RemovePhoto(ctx, userID, rel)
	if err != nil {
		return nil, err
	}

	if removed {
		if err := s.appCtx.Photos.Remove(abs); err != nil {
			s.appCtx.Logger.Warn("failed to delete photo file", "path", rel, "err", err)
		}
	}
	return photos, nil
}
