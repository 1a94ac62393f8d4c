package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
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
	"github.com/copasapp/copas-api/internal/photo"
	"github.com/copasapp/copas-api/internal/server"
)

func setupRouter(t *testing.T) http.Handler {
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

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Reaction{}, &db.Match{}, &db.RouletteOption{}))

	mr := miniredis.RunT(t)
	rdb := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Uploads = config.UploadsConfig{
		Root: t.TempDir(), MaxUploadBytes: 10 << 20, MaxPhotos: 6,
		MaxWidth: 1920, MaxHeight: 1080, JPEGQuality: 80,
	}

	photos, err := photo.NewStore(cfg)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.New(app.New(cfg, dbase, rdb, photos, log)).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, h http.Handler, phone, name string) uint64 {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"phone": phone, "password": "secret", "name": name,
		"birthdate": "1995-04-12", "gender": "female",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	return uint64(user["id"].(float64))
}

func TestRegisterAndLoginFlow(t *testing.T) {
	h := setupRouter(t)

	id := registerUser(t, h, "3009998888", "Ana")

	// duplicate phone in another format collides
	w := doJSON(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"phone": "+57 300 999 8888", "password": "x", "name": "Clone",
		"birthdate": "1990-01-01", "gender": "female",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// login with the formatted variant resolves to the same user
	w = doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"phone": "+57 300 999 8888", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(id), user["id"])
	_, hasPassword := user["passwordHash"]
	assert.False(t, hasPassword)

	// wrong password
	w = doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"phone": "3009998888", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown phone
	w = doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"phone": "3000000000", "password": "secret",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReactEndpointCreatesMatch(t *testing.T) {
	h := setupRouter(t)

	ana := registerUser(t, h, "3000000001", "Ana")
	beto := registerUser(t, h, "3000000002", "Beto")

	w := doJSON(t, h, http.MethodPost, "/api/matches/react", map[string]any{
		"senderId": ana, "receiverId": beto, "reactionType": "LIKE",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Nil(t, body["match"])

	w = doJSON(t, h, http.MethodPost, "/api/matches/react", map[string]any{
		"senderId": beto, "receiverId": ana, "reactionType": "LOVE",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.NotNil(t, body["match"])

	// listing shows the match with both reactions
	w = doJSON(t, h, http.MethodGet, "/api/matches?page=0&limit=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	content := decodeBody(t, w)["content"].(map[string]any)
	assert.Equal(t, float64(1), content["total"])
	data := content["data"].([]any)
	require.Len(t, data, 1)
	row := data[0].(map[string]any)
	assert.Equal(t, "LIKE", row["user1Reaction"])
	assert.Equal(t, "LOVE", row["user2Reaction"])
}

func TestReactEndpointValidation(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/matches/react", map[string]any{
		"senderId": 1, "receiverId": 1, "reactionType": "LIKE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/matches/react", map[string]any{
		"senderId": 1, "receiverId": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailableUsersEndpoint(t *testing.T) {
	h := setupRouter(t)

	ana := registerUser(t, h, "3000000001", "Ana")
	beto := registerUser(t, h, "3000000002", "Beto")
	caro := registerUser(t, h, "3000000003", "Caro")

	w := doJSON(t, h, http.MethodPost, "/api/matches/react", map[string]any{
		"senderId": ana, "receiverId": beto, "reactionType": "DISLIKE",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/available?userId=%d", ana), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, float64(caro), users[0]["id"])

	// missing userId
	w = doJSON(t, h, http.MethodGet, "/api/users/available", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadPhoto(t *testing.T, h http.Handler, userID uint64) *httptest.ResponseRecorder {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 99, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", "pic.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/users/upload/photos/%d", userID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPhotoUploadAndDelete(t *testing.T) {
	h := setupRouter(t)

	ana := registerUser(t, h, "3000000001", "Ana")

	w := uploadPhoto(t, h, ana)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	photos := decodeBody(t, w)["photos"].([]any)
	require.Len(t, photos, 1)
	ref := photos[0].(string)

	// the stored file is served from the static mount
	req := httptest.NewRequest(http.MethodGet, ref, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// delete using a full URL
	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/users/delete/photos/%d", ana), map[string]any{
		"photo": "http://localhost:3000" + ref,
	})
	require.Equal(t, http.StatusOK, w.Code)
	photos = decodeBody(t, w)["photos"].([]any)
	assert.Empty(t, photos)
}

func TestPhotoUploadMissingFile(t *testing.T) {
	h := setupRouter(t)
	ana := registerUser(t, h, "3000000001", "Ana")

	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/upload/photos/%d", ana), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoUploadUnknownUser(t *testing.T) {
	h := setupRouter(t)

	w := uploadPhoto(t, h, 4242)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouletteCRUD(t *testing.T) {
	h := setupRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/roulette", map[string]any{
		"name": "Truth", "description": "Answer honestly",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)["data"].(map[string]any)
	id := uint64(created["id"].(float64))

	w = doJSON(t, h, http.MethodGet, "/api/roulette", nil)
	require.Equal(t, http.StatusOK, w.Code)
	content := decodeBody(t, w)["content"].(map[string]any)
	assert.Equal(t, float64(1), content["total"])

	w = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/roulette/%d", id), map[string]any{
		"name": "Dare", "description": "Do something", "state": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "Dare", updated["name"])
	assert.Equal(t, false, updated["state"])

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/roulette/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/roulette/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserCRUD(t *testing.T) {
	h := setupRouter(t)

	ana := registerUser(t, h, "3000000001", "Ana")

	w := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d", ana), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/users/%d", ana), map[string]any{
		"description": "updated bio",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "updated bio", body["description"])
	assert.Equal(t, "Ana", body["name"])

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/users/%d", ana), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d", ana), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
