package auth

import (
	"testing"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!!"

func TestTokenManager_IssueVerify_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.Issue(&models.TokenClaims{Username: "jdoe", Email: "jdoe@example.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "jdoe@example.com", claims.Email)
	assert.Equal(t, "jdoe", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Nil(t, claims.Profile)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_EmbeddedProfileRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret)
	profile := &models.ExternalIdentity{
		Provider:  "google",
		Subject:   "1234567890",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	token, err := tm.Issue(&models.TokenClaims{Profile: profile}, time.Hour)
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, profile, claims.Profile)
}

func TestTokenManager_UniqueJTI(t *testing.T) {
	tm := NewTokenManager(testSecret)
	claims := &models.TokenClaims{Username: "jdoe"}

	first, err := tm.Issue(claims, time.Hour)
	require.NoError(t, err)
	second, err := tm.Issue(claims, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Empty(t, claims.ID, "Issue must not mutate the caller's claims")
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := tm.Issue(&models.TokenClaims{Username: "jdoe"}, time.Hour)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret).Issue(&models.TokenClaims{Username: "jdoe"}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("another-secret-32-characters-long").Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Verify_Tampered(t *testing.T) {
	tm := NewTokenManager(testSecret)
	token, err := tm.Issue(&models.TokenClaims{Username: "jdoe"}, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Verify_Garbage(t *testing.T) {
	_, err := NewTokenManager(testSecret).Verify("not.a.token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Verify_RejectsOtherAlgorithms(t *testing.T) {
	claims := &models.TokenClaims{
		Username: "jdoe",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(none)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Verify_RequiresExpiry(t *testing.T) {
	claims := &models.TokenClaims{Username: "jdoe"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Issue_InvalidInput(t *testing.T) {
	tm := NewTokenManager(testSecret)

	_, err := tm.Issue(nil, time.Hour)
	assert.Error(t, err)

	_, err = tm.Issue(&models.TokenClaims{Username: "jdoe"}, 0)
	assert.Error(t, err)
}
