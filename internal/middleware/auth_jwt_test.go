package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "user-1",
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var passed echo.Context
	handler := mw(func(c echo.Context) error {
		passed = c
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)

	return rec, passed
}

func TestAuthJWT_ValidTokenSetsContext(t *testing.T) {
	mw := AuthJWT(config.Config{JWTSecret: testSecret})

	rec, passed := doRequest(t, mw, "Bearer "+signToken(t, validClaims("CUSTOMER")))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, passed)
	assert.Equal(t, "user-1", passed.Get(CtxUserIDKey))
	assert.Equal(t, "CUSTOMER", passed.Get(CtxUserRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	mw := AuthJWT(config.Config{JWTSecret: testSecret})

	rec, passed := doRequest(t, mw, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, passed)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	mw := AuthJWT(config.Config{JWTSecret: "other-secret"})

	rec, _ := doRequest(t, mw, "Bearer "+signToken(t, validClaims("CUSTOMER")))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	mw := AuthJWT(config.Config{JWTSecret: testSecret})

	claims := validClaims("CUSTOMER")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	rec, _ := doRequest(t, mw, "Bearer "+signToken(t, claims))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRoleClaim(t *testing.T) {
	mw := AuthJWT(config.Config{JWTSecret: testSecret})

	rec, _ := doRequest(t, mw, "Bearer "+signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	e := echo.New()

	run := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxUserRoleKey, role)
		}

		handler := AdminRoleGuard()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		_ = handler(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("CUSTOMER"))
	assert.Equal(t, http.StatusForbidden, run("ARTISAN"))
	assert.Equal(t, http.StatusUnauthorized, run(""))
}

func TestArtisanRoleGuard(t *testing.T) {
	e := echo.New()

	run := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxUserRoleKey, role)
		}

		handler := ArtisanRoleGuard()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		_ = handler(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("ARTISAN"))
	assert.Equal(t, http.StatusOK, run("ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("CUSTOMER"))
}
