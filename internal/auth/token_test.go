package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/clinic-access-core/internal/domain"
)

type TokenCodecTestSuite struct {
	suite.Suite
	now   time.Time
	codec *TokenCodec
}

func (s *TokenCodecTestSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	codec, err := NewTokenCodec("test-secret", 12*time.Hour, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	s.codec = codec
}

func (s *TokenCodecTestSuite) claims() Claims {
	return Claims{
		UserID:   "user-1",
		Email:    "dentist@clinic.test",
		Role:     domain.RoleDentist,
		TenantID: "tenant-1",
	}
}

func (s *TokenCodecTestSuite) TestIssueAndVerify_RoundTrip() {
	// Arrange
	token, err := s.codec.Issue(s.claims())
	s.Require().NoError(err)

	// Act
	claims, err := s.codec.Verify(token)

	// Assert
	s.Require().NoError(err)
	s.Equal("user-1", claims.UserID)
	s.Equal("dentist@clinic.test", claims.Email)
	s.Equal(domain.RoleDentist, claims.Role)
	s.Equal("tenant-1", claims.TenantID)
	s.Equal(s.now.Unix(), claims.IssuedAt.Unix())
	s.Equal(s.now.Add(12*time.Hour).Unix(), claims.ExpiresAt.Unix())
	s.NotEmpty(claims.ID)
}

func (s *TokenCodecTestSuite) TestVerify_Expired() {
	// Arrange
	token, err := s.codec.Issue(s.claims())
	s.Require().NoError(err)

	// Act
	s.now = s.now.Add(12*time.Hour + time.Second)
	claims, err := s.codec.Verify(token)

	// Assert
	s.Nil(claims)
	s.ErrorIs(err, ErrExpired)
}

func (s *TokenCodecTestSuite) TestVerify_JustBeforeExpiry() {
	token, err := s.codec.Issue(s.claims())
	s.Require().NoError(err)

	s.now = s.now.Add(12*time.Hour - time.Second)
	_, err = s.codec.Verify(token)

	s.NoError(err)
}

func (s *TokenCodecTestSuite) TestVerify_TamperedPayload() {
	// Arrange
	token, err := s.codec.Issue(s.claims())
	s.Require().NoError(err)
	parts := strings.Split(token, ".")
	s.Require().Len(parts, 3)

	payload := []byte(parts[1])
	if payload[0] == 'e' {
		payload[0] = 'f'
	} else {
		payload[0] = 'e'
	}
	tampered := strings.Join([]string{parts[0], string(payload), parts[2]}, ".")

	// Act
	_, err = s.codec.Verify(tampered)

	// Assert
	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *TokenCodecTestSuite) TestVerify_TamperedAndExpiredReportsSignature() {
	token, err := s.codec.Issue(s.claims())
	s.Require().NoError(err)
	tampered := token[:len(token)-2] + flipChar(token[len(token)-2]) + token[len(token)-1:]

	s.now = s.now.Add(48 * time.Hour)
	_, err = s.codec.Verify(tampered)

	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *TokenCodecTestSuite) TestVerify_OtherSecret() {
	other, err := NewTokenCodec("other-secret", time.Hour, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	token, err := other.Issue(s.claims())
	s.Require().NoError(err)

	_, err = s.codec.Verify(token)

	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *TokenCodecTestSuite) TestVerify_Garbage() {
	for _, token := range []string{"", "abc", "a.b.c", "not a token at all"} {
		_, err := s.codec.Verify(token)
		s.ErrorIs(err, ErrInvalidSignature, token)
	}
}

func (s *TokenCodecTestSuite) TestVerify_RejectsNoneAlgorithm() {
	claims := s.claims()
	claims.ExpiresAt = jwt.NewNumericDate(s.now.Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.codec.Verify(token)

	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *TokenCodecTestSuite) TestIssueForUser() {
	tenantID := "tenant-9"
	user := &domain.User{ID: "user-9", Email: "admin@clinic.test", Role: domain.RoleAdmin, TenantID: &tenantID}

	token, claims, err := s.codec.IssueForUser(user)

	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal("tenant-9", claims.TenantID)
	s.Equal(domain.RoleAdmin, claims.Role)
	s.NotEmpty(claims.ID)
}

func (s *TokenCodecTestSuite) TestNewTokenCodec_EmptySecret() {
	_, err := NewTokenCodec("", time.Hour)
	s.ErrorIs(err, ErrMissingSecret)
}

func flipChar(c byte) string {
	if c == 'A' {
		return "B"
	}
	return "A"
}

func TestTokenCodecTestSuite(t *testing.T) {
	suite.Run(t, new(TokenCodecTestSuite))
}
