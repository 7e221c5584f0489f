package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("u1", "student", "S001", "edulog-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "secret", "edulog-test")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "S001", claims.StudentID)
	assert.False(t, claims.IsAdmin())
}

func TestIssueUniqueWithinSameSecond(t *testing.T) {
	first, err := Issue("u1", "student", "S001", "edulog-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	second, err := Issue("u1", "student", "S001", "edulog-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.RefreshToken, first.AccessToken)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("u1", "admin", "", "edulog-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-secret", "edulog-test")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("u1", "admin", "", "someone-else", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "edulog-test")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("u1", "admin", "", "edulog-test", "secret", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "edulog-test")
	assert.Error(t, err)
}

func TestAdminClaims(t *testing.T) {
	pair, err := Issue("a1", "admin", "", "edulog-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(pair.AccessToken, "secret", "edulog-test")
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Empty(t, claims.StudentID)
}
