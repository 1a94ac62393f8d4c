package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID loads a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhone loads a user by normalized phone, or nil when no user has it.
func (r *UserRepository) GetByPhone(ctx context.Context, normalized string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("phone = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Save persists all fields of an already-loaded user.
func (r *UserRepository) Save(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user row. Returns gorm.ErrRecordNotFound when the id
// does not exist.
func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAvailable returns active USER-typed profiles the requester has not
// reacted to yet, excluding the requester. Users who reacted to the
// requester without a reply are still included. Ordered by id ascending.
func (r *UserRepository) ListAvailable(ctx context.Context, userID uint64, limit, offset int) ([]db.User, error) {
	var users []db.User

	sub := r.db.
		Table("reactions").
		Select("receiver_id").
		Where("sender_id = ?", userID)

	err := r.db.WithContext(ctx).
		Where("id != ?", userID).
		Where("state = ?", true).
		Where("type = ?", db.TypeUser).
		Where("id NOT IN (?)", sub).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AppendPhoto atomically appends a photo reference to the user's sequence,
// re-validating the cap at commit time.
//
// Behavior:
//   - Runs in one transaction: re-read, cap check, save.
//   - Returns QuotaExceeded when the sequence is already at maxPhotos; the
//     caller owns removing the freshly written file in that case.
func (r *UserRepository) AppendPhoto(ctx context.Context, userID uint64, ref string, maxPhotos int) (db.PhotoList, error) {
	var photos db.PhotoList

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if len(user.Photos) >= maxPhotos {
			return svcErr.QuotaExceeded("photo limit reached")
		}
		user.Photos = append(user.Photos, ref)
		if err := tx.Model(&user).Update("photos", user.Photos).Error; err != nil {
			return err
		}
		photos = user.Photos
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// RemovePhoto drops a photo reference from the user's sequence. Removing a
// reference that is not present is a no-op: the unchanged sequence is
// returned with removed == false, never an error.
func (r *UserRepository) RemovePhoto(ctx context.Context, userID uint64, ref string) (db.PhotoList, bool, error) {
	var (
		photos  db.PhotoList
		removed bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		kept := make(db.PhotoList, 0, len(user.Photos))
		for _, p := range user.Photos {
			if p == ref {
				removed = true
				continue
			}
			kept = append(kept, p)
		}

		if removed {
			if err := tx.Model(&user).Update("photos", kept).Error; err != nil {
				return err
			}
		}
		photos = kept
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return photos, removed, nil
}
