// Package engagement implements the reaction/match engine and the admin
// match listing.
package engagement

import (
	"context"

	"gorm.io/gorm"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/repository"
	"github.com/copasapp/copas-api/internal/utils/pagination"
)

// Service contains the business logic on top of the repository and cache
// layers.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
}

// NewService creates the engagement service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// ReactResult is the outcome of one react() call: the written reaction and
// the match when, and only when, this call created it. A pair that was
// already matched before this call reports Match == nil.
type ReactResult struct {
	Reaction *db.Reaction `json:"reaction"`
	Match    *db.Match    `json:"match"`
}

// React upserts the directed reaction sender -> receiver and creates the
// canonical match when the reverse edge is also positive.
//
// Behavior:
//   - The upsert, the reciprocity check and the match insert run in one
//     transaction, so a concurrent reaction from the other side is either
//     fully visible or not at all.
//   - Two users reacting at the same instant cannot produce two match rows:
//     the canonical pair index absorbs the duplicate insert.
func (s *Service) React(ctx context.Context, senderID, receiverID uint64, reactionType string) (*ReactResult, error) {
	s.appCtx.Logger.Debug("React called", "sender", senderID, "receiver", receiverID, "type", reactionType)

	if senderID == 0 || receiverID == 0 || reactionType == "" {
		return nil, svcErr.Validation("senderId, receiverId and reactionType are required")
	}
	if senderID == receiverID {
		return nil, svcErr.Validation("cannot react to yourself")
	}
	if !db.KnownReactionType(reactionType) {
		return nil, svcErr.Validation("unknown reaction type " + reactionType)
	}

	result := &ReactResult{}

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reactions := repository.NewReactionRepository(tx)
		matches := repository.NewMatchRepository(tx)

		reaction := &db.Reaction{SenderID: senderID, ReceiverID: receiverID, Type: reactionType}
		if err := reactions.Upsert(ctx, reaction); err != nil {
			return err
		}
		result.Reaction = reaction

		if !db.PositiveReaction(reactionType) {
			return nil
		}

		reverse, err := reactions.Get(ctx, receiverID, senderID)
		if err != nil {
			return err
		}
		if reverse == nil || !db.PositiveReaction(reverse.Type) {
			return nil
		}

		match, created, err := matches.CreateCanonical(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if created {
			result.Match = match
		}
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("React failed", "sender", senderID, "receiver", receiverID, "err", err)
		return nil, err
	}

	if result.Match != nil {
		s.appCtx.Logger.Info("match created", "match_id", result.Match.ID,
			"user1", result.Match.User1ID, "user2", result.Match.User2ID)
		if err := s.appCtx.RedisCache.InvalidateMatchCounts(ctx); err != nil {
			s.appCtx.Logger.Warn("failed to invalidate match counts", "err", err)
		}
	}

	return result, nil
}

// MatchPage is one page of the admin match listing.
type MatchPage struct {
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
	Total int64                     `json:"total"`
	Data  []repository.MatchListRow `json:"data"`
}

// ListMatches returns matches newest first, denormalized with both
// participants. The total uses a cache-first strategy:
//  1. Attempt the Redis counter for this viewed-filter variant.
//  2. On miss, count in the DB and backfill Redis with a TTL.
func (s *Service) ListMatches(ctx context.Context, p pagination.Params, viewed *bool) (*MatchPage, error) {
	rows, err := s.matchRepo.List(ctx, p.Limit, p.Offset(), viewed)
	if err != nil {
		s.appCtx.Logger.Error("ListMatches failed", "err", err)
		return nil, err
	}

	total, found, err := s.appCtx.RedisCache.GetMatchCount(ctx, viewed)
	if err != nil {
		s.appCtx.Logger.Warn("match count cache read failed", "err", err)
		found = false
	}
	if !found {
		total, err = s.matchRepo.Count(ctx, viewed)
		if err != nil {
			return nil, err
		}
		if err := s.appCtx.RedisCache.UpdateMatchCount(ctx, viewed, total); err != nil {
			s.appCtx.Logger.Warn("match count cache write failed", "err", err)
		}
	}

	if rows == nil {
		rows = []repository.MatchListRow{}
	}
	return &MatchPage{Page: p.Page, Limit: p.Limit, Total: total, Data: rows}, nil
}

// SetViewed flips the admin-viewed flag and drops the cached totals, since
// the per-filter counts changed.
func (s *Service) SetViewed(ctx context.Context, id uint64, viewed bool) (*db.Match, error) {
	match, err := s.matchRepo.SetViewed(ctx, id, viewed)
	if err != nil {
		return nil, err
	}
	if err := s.appCtx.RedisCache.InvalidateMatchCounts(ctx); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate match counts", "err", err)
	}
	return match, nil
}
