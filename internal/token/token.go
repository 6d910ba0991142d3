package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MedSupply-Manager/user-service/pkg/apierror"
)

// Kind selects one of the four token classes. Each kind is signed with its
// own secret, so a leaked email or reset token can never be replayed as an
// access or refresh token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindEmail   Kind = "email"
	KindReset   Kind = "reset"
)

// Lifetimes are fixed design constants, not configuration.
func (k Kind) Lifetime() time.Duration {
	switch k {
	case KindAccess:
		return 15 * time.Minute
	case KindRefresh:
		return 7 * 24 * time.Hour
	case KindEmail:
		return 24 * time.Hour
	case KindReset:
		return time.Hour
	}
	return 0
}

const (
	audience = "stock-management-users"
	issuer   = "stock-management"
)

// Secrets holds the four independent signing secrets. They are injected at
// construction; the issuer never reads the environment itself.
type Secrets struct {
	Access  string
	Refresh string
	Email   string
	Reset   string
}

func (s Secrets) forKind(k Kind) string {
	switch k {
	case KindAccess:
		return s.Access
	case KindRefresh:
		return s.Refresh
	case KindEmail:
		return s.Email
	case KindReset:
		return s.Reset
	}
	return ""
}

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerifyResult is returned instead of an error: verification failure is an
// expected outcome, and the reason stays server-side.
type VerifyResult struct {
	Valid  bool
	Claims *Claims
	Reason string
}

type Issuer struct {
	secrets Secrets
	now     func() time.Time
}

type IssuerOption func(*Issuer)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewIssuer(secrets Secrets, opts ...IssuerOption) *Issuer {
	i := &Issuer{secrets: secrets, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs claims with the kind's dedicated secret and the kind's fixed
// lifetime. A missing secret is a configuration error, never a silent
// fallback to another kind's secret.
func (i *Issuer) Issue(kind Kind, claims Claims) (string, error) {
	secret := i.secrets.forKind(kind)
	if secret == "" {
		return "", apierror.Configuration("missing signing secret for " + string(kind) + " tokens")
	}

	now := i.now().UTC()
	claims.Audience = jwt.ClaimStrings{audience}
	claims.Issuer = issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(kind.Lifetime()))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature, expiry, audience, and issuer against the kind's
// secret. It never panics and never returns an error: any mismatch yields
// Valid=false with a human-readable reason.
func (i *Issuer) Verify(kind Kind, tokenString string) VerifyResult {
	secret := i.secrets.forKind(kind)
	if secret == "" {
		return VerifyResult{Valid: false, Reason: "missing signing secret for " + string(kind) + " tokens"}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return VerifyResult{Valid: false, Reason: err.Error()}
	}
	if !parsed.Valid {
		return VerifyResult{Valid: false, Reason: "token is not valid"}
	}
	if claims.UserID == "" {
		return VerifyResult{Valid: false, Reason: "token has no subject user"}
	}

	return VerifyResult{Valid: true, Claims: claims}
}
