package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/copasapp/copas-api/internal/db"
)

// ReactionRepository provides data access methods for the Reaction model.
// It encapsulates all queries on the directed sender -> receiver edges.
type ReactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new repository bound to the given DB
// connection. Pass a transaction handle to run the methods inside it.
func NewReactionRepository(database *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: database}
}

// Upsert inserts or overwrites the reaction sender -> receiver.
//
// Behavior:
//   - If the (sender_id, receiver_id) pair exists, the row is updated with
//     the new type and a fresh updated_at.
//   - Otherwise a new row is inserted.
//   - Composite PK + ON CONFLICT make this a single atomic statement; no
//     read-then-write window that could lose a concurrent update.
//
// The written row is loaded back into reaction.
func (r *ReactionRepository) Upsert(ctx context.Context, reaction *db.Reaction) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sender_id"}, {Name: "receiver_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(reaction).Error; err != nil {
		return err
	}

	// reload so timestamps reflect the stored row on the conflict path
	return r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", reaction.SenderID, reaction.ReceiverID).
		First(reaction).Error
}

// Get returns the reaction sender -> receiver, or nil when the edge does
// not exist.
func (r *ReactionRepository) Get(ctx context.Context, senderID, receiverID uint64) (*db.Reaction, error) {
	var reaction db.Reaction
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
