package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "secret", Issuer: "activity-archive"}

func TestSignAndParse(t *testing.T) {
	token, err := Sign(testConfig, "athlete", []string{ScopeArchiveRead}, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "athlete", claims.Subject)
	require.True(t, claims.HasScope(ScopeArchiveRead))
	require.False(t, claims.HasScope("archive:write"))
}

func TestParseRejectsWrongIssuerAndExpired(t *testing.T) {
	token, err := Sign(Config{Secret: "secret", Issuer: "someone-else"}, "athlete", nil, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := Sign(testConfig, "athlete", nil, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = Parse(expired, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestParseAcceptsScopeList(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "athlete",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeArchiveRead},
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeArchiveRead))
}

func TestSignRequiresSecret(t *testing.T) {
	_, err := Sign(Config{}, "athlete", nil, time.Hour, time.Now())
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	handler := NewMiddleware(testConfig).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, seen)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	noScope, err := Sign(testConfig, "athlete", nil, time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer "+noScope)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	valid, err := Sign(testConfig, "athlete", []string{ScopeArchiveRead}, time.Hour, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "athlete", seen.Subject)
}
