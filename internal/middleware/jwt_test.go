package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasakita/recipe-share/internal/model"
	"github.com/rasakita/recipe-share/internal/utils"
)

// fakeUserStore serves a fixed set of users keyed by id.
type fakeUserStore struct {
	users map[uint64]model.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

const testSecret = "unit-test-secret"

func runJWT(t *testing.T, store *fakeUserStore, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var passed echo.Context
	next := func(c echo.Context) error {
		passed = c
		return c.NoContent(http.StatusOK)
	}
	err := JWTAuth(testSecret, store)(next)(c)
	return rec, passed, err
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	store := &fakeUserStore{users: map[uint64]model.User{
		7: {ID: 7, Nama: "Siti", Email: "siti@example.com", Role: model.RoleUser},
	}}
	tok, err := utils.NewSessionToken(testSecret, 7, model.RoleUser, 7)
	require.NoError(t, err)

	rec, passed, err := runJWT(t, store, "Bearer "+tok.Token)
	require.NoError(t, err)
	require.NotNil(t, passed)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, uint64(7), passed.Get("user_id"))
	assert.Equal(t, model.RoleUser, passed.Get("role"))
	assert.Equal(t, "Siti", passed.Get("user_nama"))
	assert.Equal(t, "siti@example.com", passed.Get("user_email"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, passed, err := runJWT(t, &fakeUserStore{}, "")
	require.NoError(t, err)
	assert.Nil(t, passed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login terlebih dahulu")
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, passed, err := runJWT(t, &fakeUserStore{}, "Bearer not.a.jwt")
	require.NoError(t, err)
	assert.Nil(t, passed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token tidak valid")
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewSessionToken("other-secret", 7, model.RoleUser, 7)
	require.NoError(t, err)

	rec, passed, err := runJWT(t, &fakeUserStore{}, "Bearer "+tok.Token)
	require.NoError(t, err)
	assert.Nil(t, passed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthDeletedUserRejected(t *testing.T) {
	// Token subject no longer exists in the store.
	tok, err := utils.NewSessionToken(testSecret, 99, model.RoleUser, 7)
	require.NoError(t, err)

	rec, passed, err := runJWT(t, &fakeUserStore{users: map[uint64]model.User{}}, "Bearer "+tok.Token)
	require.NoError(t, err)
	assert.Nil(t, passed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User tidak ditemukan")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	store := &fakeUserStore{users: map[uint64]model.User{
		7: {ID: 7, Role: model.RoleUser},
	}}
	// Negative TTL yields an already expired token.
	tok, err := utils.NewSessionToken(testSecret, 7, model.RoleUser, -1)
	require.NoError(t, err)

	rec, passed, err := runJWT(t, store, "Bearer "+tok.Token)
	require.NoError(t, err)
	assert.Nil(t, passed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
