package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// MinSecretLength is the minimum size of the HMAC signing key in bytes.
const MinSecretLength = 32

var (
	// ErrSecretTooShort is returned when the signing key is shorter than MinSecretLength.
	ErrSecretTooShort = fmt.Errorf("jwt: secret must be at least %d bytes", MinSecretLength)
	// ErrTokenDecode indicates the claims of a token could not be read.
	ErrTokenDecode = errors.New("jwt: token claims could not be decoded")
	// ErrTokenKind indicates an unsupported token kind was requested.
	ErrTokenKind = errors.New("jwt: unsupported token kind")
)

// TokenClaims is the claim set carried by every bearer token.
type TokenClaims struct {
	TokenID string           `json:"tokenUuid"`
	Type    domain.TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject claim.
func (c *TokenClaims) UserID() (int64, error) {
	if c == nil || strings.TrimSpace(c.Subject) == "" {
		return 0, ErrTokenDecode
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", ErrTokenDecode, c.Subject)
	}
	return id, nil
}

// IssuedToken is a freshly signed bearer together with the values that must be registered.
type IssuedToken struct {
	Token     string
	TokenID   string
	Kind      domain.TokenKind
	ExpiresAt time.Time
}

// TokenCodecOption customises a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenCodec signs and validates HS256 bearer tokens.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec constructs a codec bound to the shared secret.
func NewTokenCodec(secret string, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	codec := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	codec.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(codec.now),
	)
	return codec, nil
}

// Issue signs a new token for the user. The token id is a random UUID.
func (c *TokenCodec) Issue(userID int64, kind domain.TokenKind, ttl time.Duration) (IssuedToken, error) {
	if !kind.Valid() {
		return IssuedToken{}, ErrTokenKind
	}

	now := c.now()
	expiresAt := now.Add(ttl)
	tokenID := uuid.NewString()

	claims := &TokenClaims{
		TokenID: tokenID,
		Type:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		Kind:      kind,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify reports whether the signature is valid and the token has not expired.
func (c *TokenCodec) Verify(bearer string) bool {
	_, err := c.Parse(bearer)
	return err == nil
}

// Parse validates the token and returns its claims.
func (c *TokenCodec) Parse(bearer string) (*TokenClaims, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, jwt.ErrTokenMalformed
	}

	claims := &TokenClaims{}
	token, err := c.parser.ParseWithClaims(bearer, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// ExtractSubject decodes the user id without re-checking the signature.
// Callers must have verified the token first.
func (c *TokenCodec) ExtractSubject(bearer string) (int64, error) {
	claims, err := c.decode(bearer)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// ExtractTokenID decodes the token id without re-checking the signature.
// Callers must have verified the token first.
func (c *TokenCodec) ExtractTokenID(bearer string) (string, error) {
	claims, err := c.decode(bearer)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.TokenID) == "" {
		return "", ErrTokenDecode
	}
	return claims.TokenID, nil
}

func (c *TokenCodec) decode(bearer string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(bearer), claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	return claims, nil
}
