package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Codec signs and verifies tokens with a single process-wide symmetric
// secret and algorithm, both loaded once at startup. There is no key
// rotation: compromise of the secret invalidates every outstanding token.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a Codec for one of the HMAC algorithms (HS256, HS384,
// HS512). An empty algorithm defaults to HS256.
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwtx: secret key is required")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}

	return &Codec{secret: []byte(secret), method: method}, nil
}

// Encode serializes claims into a compact signed token string.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// wireClaims is the superset of fields either token kind can carry. Decoding
// through it lets the codec check claim shape: an access token presented
// where a refresh token is expected (or the reverse) is rejected here rather
// than by the caller.
type wireClaims struct {
	jwt.RegisteredClaims

	IsAdmin           bool   `json:"is_admin,omitempty"`
	AccessFingerprint string `json:"atf,omitempty"`
}

// DecodeAccess verifies and parses an access token: signature, structure and
// expiry are all enforced, the subject must be present, and a binding
// fingerprint must be absent. A refresh token is never a valid access
// credential.
func (c *Codec) DecodeAccess(token string) (AccessClaims, error) {
	wire, err := c.parse(token, true)
	if err != nil {
		return AccessClaims{}, err
	}
	if wire.Subject == "" || wire.AccessFingerprint != "" {
		return AccessClaims{}, ErrInvalidClaim
	}

	return AccessClaims{
		RegisteredClaims: wire.RegisteredClaims,
		IsAdmin:          wire.IsAdmin,
	}, nil
}

// DecodeAccessAllowExpired verifies signature and structure but tolerates an
// expired exp claim. This exists solely for the refresh flow, whose whole
// point is replacing an access token that has already lapsed; the token must
// still be intact and carry a subject.
func (c *Codec) DecodeAccessAllowExpired(token string) (AccessClaims, error) {
	wire, err := c.parse(token, false)
	if err != nil {
		return AccessClaims{}, err
	}
	if wire.Subject == "" {
		return AccessClaims{}, ErrInvalidClaim
	}

	return AccessClaims{
		RegisteredClaims: wire.RegisteredClaims,
		IsAdmin:          wire.IsAdmin,
	}, nil
}

// DecodeRefresh verifies and parses a refresh token with full expiry
// enforcement. Both the subject and the binding fingerprint are required.
func (c *Codec) DecodeRefresh(token string) (RefreshClaims, error) {
	wire, err := c.parse(token, true)
	if err != nil {
		return RefreshClaims{}, err
	}
	if wire.Subject == "" || wire.AccessFingerprint == "" {
		return RefreshClaims{}, ErrInvalidClaim
	}

	return RefreshClaims{
		RegisteredClaims:  wire.RegisteredClaims,
		AccessFingerprint: wire.AccessFingerprint,
	}, nil
}

func (c *Codec) parse(token string, enforceExpiry bool) (wireClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
	}
	if enforceExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		// Signature is still verified; only claim validation is skipped.
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var wire wireClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &wire, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return wireClaims{}, mapParseError(err)
	}

	return wire, nil
}

// mapParseError folds the library's error zoo into the codec's taxonomy so
// callers can fail closed while still telling staleness apart from tampering.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrInvalidClaim
	default:
		return ErrMalformed
	}
}
