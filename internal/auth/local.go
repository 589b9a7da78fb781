package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "lankaportal"

var _ Provider = (*LocalProvider)(nil)

// LocalConfig configures a LocalProvider.
type LocalConfig struct {
	// Secret signs tokens. A random secret is generated when empty, which
	// invalidates tokens on restart.
	Secret []byte
	TTL    time.Duration
	// AutoSession resolves requests without a token to DefaultUser.
	AutoSession bool
	DefaultUser User
	// PasswordHash is a bcrypt hash. When set, only the default user may
	// sign in and the password must match.
	PasswordHash string
	// TOTPSecret is a base32 secret. When set, sign-in also requires a
	// current six-digit code.
	TOTPSecret string
	// Now overrides the clock. Intended for tests.
	Now func() time.Time
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LocalProvider is an offline session backend issuing HS256 tokens.
// Without a password hash every sign-in succeeds. Revoked token IDs are
// kept in memory until they expire.
type LocalProvider struct {
	notifier
	secret      []byte
	ttl         time.Duration
	autoSession bool
	user        User
	now         func() time.Time
	hash        []byte
	totpSecret  string

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	user := cfg.DefaultUser
	if user.Email == "" {
		user.Email = "traveller@lankaportal.local"
	}
	if user.ID == "" {
		user.ID = userID(user.Email)
	}
	var hash []byte
	if cfg.PasswordHash != "" {
		hash = []byte(cfg.PasswordHash)
		if _, err := bcrypt.Cost(hash); err != nil {
			return nil, fmt.Errorf("password hash: %w", err)
		}
	}
	return &LocalProvider{
		secret:      secret,
		ttl:         cfg.TTL,
		autoSession: cfg.AutoSession,
		user:        user,
		now:         cfg.Now,
		hash:        hash,
		totpSecret:  cfg.TOTPSecret,
		revoked:     make(map[string]time.Time),
	}, nil
}

func (p *LocalProvider) Name() string { return "local" }

// Session validates token. With auto sessions enabled an empty token
// resolves to the default user.
func (p *LocalProvider) Session(_ context.Context, token string) (*Session, error) {
	if token == "" {
		if p.autoSession {
			return &Session{User: p.user}, nil
		}
		return nil, ErrUnauthorized
	}
	c, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		User:      User{ID: c.Subject, Email: c.Email, Name: c.Name},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// SignIn issues a token for creds.Email, or for the default user when no
// email is given.
func (p *LocalProvider) SignIn(_ context.Context, creds Credentials) (*Session, error) {
	now := p.now()
	user := p.user
	if email := strings.TrimSpace(strings.ToLower(creds.Email)); email != "" && email != p.user.Email {
		if p.hash != nil {
			return nil, ErrInvalidCredentials
		}
		user = User{ID: userID(email), Email: email, Name: strings.SplitN(email, "@", 2)[0]}
	}
	if err := p.checkSecrets(creds, now); err != nil {
		return nil, err
	}

	exp := now.Add(p.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	p.notify(Change{Kind: SignedIn, User: user, At: now})
	return &Session{Token: token, User: user, ExpiresAt: exp}, nil
}

// SignOut revokes token.
func (p *LocalProvider) SignOut(_ context.Context, token string) error {
	c, err := p.parse(token)
	if err != nil {
		return err
	}

	p.mu.Lock()
	now := p.now()
	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
	p.revoked[c.ID] = c.ExpiresAt.Time
	p.mu.Unlock()

	p.notify(Change{Kind: SignedOut, User: User{ID: c.Subject, Email: c.Email, Name: c.Name}, At: now})
	return nil
}

func (p *LocalProvider) checkSecrets(creds Credentials, now time.Time) error {
	if p.hash != nil {
		if err := bcrypt.CompareHashAndPassword(p.hash, []byte(creds.Password)); err != nil {
			return ErrInvalidCredentials
		}
	}
	if p.totpSecret != "" {
		ok, err := totp.ValidateCustom(strings.TrimSpace(creds.Code), p.totpSecret, now, totpOpts)
		if err != nil || !ok {
			return ErrInvalidCredentials
		}
	}
	return nil
}

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func (p *LocalProvider) parse(token string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	p.mu.Lock()
	_, revoked := p.revoked[c.ID]
	p.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}
	return c, nil
}

// userID derives a stable id from an email address.
func userID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}
