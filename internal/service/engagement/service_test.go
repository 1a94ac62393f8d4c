package engagement_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/cache"
	"github.com/copasapp/copas-api/internal/config"
	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/photo"
	"github.com/copasapp/copas-api/internal/service/engagement"
	"github.com/copasapp/copas-api/internal/utils/pagination"
)

// setupService spins up an in-memory SQLite DB, applies migrations, seeds a
// few users, starts a miniredis, and wires everything into a Service.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) *engagement.Service {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Reaction{}, &db.Match{}))

	users := []db.User{
		{ID: 1, State: true, Name: "Ana", Phone: "3000000001", PasswordHash: "x", Type: db.TypeUser},
		{ID: 2, State: true, Name: "Beto", Phone: "3000000002", PasswordHash: "x", Type: db.TypeUser},
		{ID: 3, State: true, Name: "Caro", Phone: "3000000003", PasswordHash: "x", Type: db.TypeUser},
	}
	require.NoError(t, dbase.Create(&users).Error)

	mr := miniredis.RunT(t)
	rdb := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	cfg := &config.Config{}
	cfg.Uploads = config.UploadsConfig{Root: t.TempDir(), MaxPhotos: 6, MaxWidth: 1920, MaxHeight: 1080, JPEGQuality: 80}

	photos, err := photo.NewStore(cfg)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engagement.NewService(app.New(cfg, dbase, rdb, photos, log))
}

func matchCount(t *testing.T, svc *engagement.Service) int64 {
	t.Helper()
	page, err := svc.ListMatches(context.Background(), pagination.Parse("", "", 50), nil)
	require.NoError(t, err)
	return page.Total
}

func TestReactWithoutReciprocityYieldsNoMatch(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	res, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	require.NotNil(t, res.Reaction)
	assert.Equal(t, db.ReactionLike, res.Reaction.Type)
	assert.Nil(t, res.Match)
}

func TestMutualPositiveCreatesExactlyOneMatch(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	res, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	res, err = svc.React(ctx, 2, 1, db.ReactionLove)
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, uint64(1), res.Match.User1ID)
	assert.Equal(t, uint64(2), res.Match.User2ID)

	assert.Equal(t, int64(1), matchCount(t, svc))
}

func TestMatchIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	// higher id reacts first this time
	_, err := svc.React(ctx, 2, 1, db.ReactionLove)
	require.NoError(t, err)

	res, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, uint64(1), res.Match.User1ID)
	assert.Equal(t, uint64(2), res.Match.User2ID)

	assert.Equal(t, int64(1), matchCount(t, svc))
}

func TestRepeatedReactIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	res, err := svc.React(ctx, 2, 1, db.ReactionLike)
	require.NoError(t, err)
	require.NotNil(t, res.Match)

	// same call again: match already exists, reported as null
	res, err = svc.React(ctx, 2, 1, db.ReactionLike)
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	assert.Equal(t, int64(1), matchCount(t, svc))
}

func TestNegativeReactionNeverMatchesAndNeverUnmatches(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)

	// dislike back: no match
	res, err := svc.React(ctx, 2, 1, db.ReactionDislike)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.Equal(t, int64(0), matchCount(t, svc))

	// change of heart: like back matches
	res, err = svc.React(ctx, 2, 1, db.ReactionLike)
	require.NoError(t, err)
	require.NotNil(t, res.Match)

	// a later negative reaction keeps the match row
	_, err = svc.React(ctx, 2, 1, db.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matchCount(t, svc))
}

func TestReactValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	cases := []struct {
		name     string
		sender   uint64
		receiver uint64
		reaction string
	}{
		{"self reaction", 1, 1, db.ReactionLike},
		{"missing sender", 0, 2, db.ReactionLike},
		{"missing type", 1, 2, ""},
		{"unknown type", 1, 2, "WINK"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.React(ctx, tc.sender, tc.receiver, tc.reaction)
			require.Error(t, err)
			var svc400 *svcErr.Error
			require.ErrorAs(t, err, &svc400)
			assert.Equal(t, 400, svc400.Status)
		})
	}
}

func TestListMatchesPaginationAndViewedFilter(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	// two matches: {1,2} and {1,3}
	_, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	res, err := svc.React(ctx, 2, 1, db.ReactionLike)
	require.NoError(t, err)
	first := res.Match
	require.NotNil(t, first)

	_, err = svc.React(ctx, 1, 3, db.ReactionLove)
	require.NoError(t, err)
	res, err = svc.React(ctx, 3, 1, db.ReactionLike)
	require.NoError(t, err)
	require.NotNil(t, res.Match)

	page, err := svc.ListMatches(ctx, pagination.Parse("0", "1", 4), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Data, 1)

	// mark one viewed and filter
	_, err = svc.SetViewed(ctx, first.ID, true)
	require.NoError(t, err)

	viewed := true
	page, err = svc.ListMatches(ctx, pagination.Parse("", "", 4), &viewed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, first.ID, page.Data[0].ID)
	assert.True(t, page.Data[0].ViewedByAdmin)
}

func TestListMatchesTotalSurvivesCacheAndInvalidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.React(ctx, 1, 2, db.ReactionLike)
	require.NoError(t, err)
	_, err = svc.React(ctx, 2, 1, db.ReactionLike)
	require.NoError(t, err)

	// first read fills the cache, second hits it
	assert.Equal(t, int64(1), matchCount(t, svc))
	assert.Equal(t, int64(1), matchCount(t, svc))

	// a new match invalidates the cached total
	_, err = svc.React(ctx, 1, 3, db.ReactionLike)
	require.NoError(t, err)
	_, err = svc.React(ctx, 3, 1, db.ReactionLove)
	require.NoError(t, err)

	assert.Equal(t, int64(2), matchCount(t, svc))
}

func TestSetViewedUnknownMatch(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.SetViewed(ctx, 999, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
