package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/copasapp/copas-api/internal/db"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB
// connection. Pass a transaction handle to run the methods inside it.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// MatchListRow is one denormalized row of the admin match listing: the
// match itself, both participants' public fields and both current
// reaction types.
type MatchListRow struct {
	ID            uint64    `json:"id"`
	State         bool      `json:"state"`
	ViewedByAdmin bool      `json:"viewedByAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	User1ID        uint64       `json:"user1Id"`
	User1Name      string       `json:"user1Name"`
	User1Phone     string       `json:"user1Phone"`
	User1Photos    db.PhotoList `json:"user1Photos"`
	User1Birthdate *time.Time   `json:"user1Birthdate"`

	User2ID        uint64       `json:"user2Id"`
	User2Name      string       `json:"user2Name"`
	User2Phone     string       `json:"user2Phone"`
	User2Photos    db.PhotoList `json:"user2Photos"`
	User2Birthdate *time.Time   `json:"user2Birthdate"`

	User1Reaction *string `json:"user1Reaction"`
	User2Reaction *string `json:"user2Reaction"`
}

// CreateCanonical inserts the match row for the unordered pair {a, b},
// stored with the smaller id first.
//
// Behavior:
//   - ON CONFLICT on the canonical pair index makes concurrent
//     double-triggers safe: at most one caller observes created == true.
//   - When the pair already exists the insert is a no-op and (nil, false)
//     is returned.
func (r *MatchRepository) CreateCanonical(ctx context.Context, a, b uint64) (*db.Match, bool, error) {
	if a > b {
		a, b = b, a
	}

	match := db.Match{User1ID: a, User2ID: b, State: true}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &match, true, nil
}

// List returns matches ordered by creation time descending, denormalized
// with both participants and both reaction types. viewed filters by the
// admin-viewed flag when non-nil.
func (r *MatchRepository) List(ctx context.Context, limit, offset int, viewed *bool) ([]MatchListRow, error) {
	var rows []MatchListRow

	query := r.db.WithContext(ctx).
		Table("matches m").
		Select(`m.id, m.state, m.viewed_by_admin, m.created_at, m.updated_at,
			u1.id AS user1_id, u1.name AS user1_name, u1.phone AS user1_phone,
			u1.photos AS user1_photos, u1.birthdate AS user1_birthdate,
			u2.id AS user2_id, u2.name AS user2_name, u2.phone AS user2_phone,
			u2.photos AS user2_photos, u2.birthdate AS user2_birthdate,
			r1.type AS user1_reaction, r2.type AS user2_reaction`).
		Joins("INNER JOIN users u1 ON u1.id = m.user1_id").
		Joins("INNER JOIN users u2 ON u2.id = m.user2_id").
		Joins("LEFT JOIN reactions r1 ON r1.sender_id = m.user1_id AND r1.receiver_id = m.user2_id").
		Joins("LEFT JOIN reactions r2 ON r2.sender_id = m.user2_id AND r2.receiver_id = m.user1_id").
		Order("m.created_at DESC, m.id DESC").
		Limit(limit).
		Offset(offset)

	if viewed != nil {
		query = query.Where("m.viewed_by_admin = ?", *viewed)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the match total for the given viewed filter.
func (r *MatchRepository) Count(ctx context.Context, viewed *bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&db.Match{})
	if viewed != nil {
		query = query.Where("viewed_by_admin = ?", *viewed)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SetViewed flips the admin-viewed flag on a match.
func (r *MatchRepository) SetViewed(ctx context.Context, id uint64, viewed bool) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&match).Update("viewed_by_admin", viewed).Error; err != nil {
		return nil, err
	}
	return &match, nil
}
