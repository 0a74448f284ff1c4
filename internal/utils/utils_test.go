package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, rec.Body.String())
}

func TestJSONErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusForbidden, "nope")

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "nope", body.Error)
}

func TestJSONNilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)
	assert.Empty(t, rec.Body.String())
}

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken("secret", "user-1", "recruiter", "agency-9", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, err := VerifyToken(req, "secret")
	require.NoError(t, err)

	sub, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
	assert.Equal(t, "recruiter", GetStringClaim(claims, "role"))
	assert.Equal(t, "agency-9", GetStringClaim(claims, "agency_id"))
}

func TestVerifyTokenErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := VerifyToken(req, "secret")
	assert.ErrorIs(t, err, ErrMissingAuthHeader)

	token, err := IssueToken("other", "user-1", "candidate", "", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = VerifyToken(req, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken("secret", "user-1", "candidate", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenParseFailure(t *testing.T) {
	orig := parseJWT
	t.Cleanup(func() { parseJWT = orig })
	parseJWT = func(string, jwt.Keyfunc) (*jwt.Token, error) { return nil, errors.New("boom") }

	_, err := ParseToken("anything", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromClaims(t *testing.T) {
	id, err := GetUserIDFromClaims(jwt.MapClaims{"sub": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = GetUserIDFromClaims(jwt.MapClaims{})
	assert.Error(t, err)

	_, err = GetUserIDFromClaims(jwt.MapClaims{"sub": true})
	assert.Error(t, err)
	assert.Empty(t, GetStringClaim(jwt.MapClaims{"role": 3}, "role"))
}
