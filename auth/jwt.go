package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT errors
var (
	ErrInvalidToken   = errors.New("token is invalid or expired")
	ErrWrongTokenType = errors.New("token has wrong type")
	ErrNoBearer       = errors.New("authorization header is not a bearer token")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carries the user id in the subject together with the token type.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	UserID    uint      `json:"user_id"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// JWTService signs and verifies HS256 tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	if config.Issuer == "" {
		config.Issuer = "kolo-rest-api"
	}
	return &JWTService{config: config, now: time.Now}
}

// IssuePair creates an access and a refresh token for the user.
func (s *JWTService) IssuePair(userID uint) (TokenPair, error) {
	access, err := s.issue(userID, AccessToken, s.config.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issue(userID, RefreshToken, s.config.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and returns a new access token for its user.
func (s *JWTService) Refresh(refreshToken string) (string, error) {
	claims, err := s.Parse(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	return s.issue(claims.UserID, AccessToken, s.config.AccessTokenTTL)
}

func (s *JWTService) issue(userID uint, tokenType TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		TokenType: tokenType,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Parse verifies the signature, the lifetime and, when expected is set, the token type.
func (s *JWTService) Parse(tokenString string, expected TokenType) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if expected != "" && claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
// An empty header yields an empty token and no error.
func ExtractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", nil
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrNoBearer
	}
	return strings.TrimSpace(token), nil
}
