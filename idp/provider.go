package idp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finovant/accesscore"
)

// ErrInvalidCredentials is returned by SignIn when the address is
// unknown or the secret does not match. The two cases are deliberately
// indistinguishable.
var ErrInvalidCredentials = errors.New("idp: invalid credentials")

// Config tunes a [DevProvider].
type Config struct {
	// SigningKey signs session tokens. Required, at least 32 bytes.
	SigningKey []byte
	// TokenTTL bounds how long a session token stays valid. Defaults to
	// one hour.
	TokenTTL time.Duration
}

type account struct {
	subjectID  string
	secretHash string
	metadata   map[string]string
}

// DevProvider is an in-memory accesscore.IdentityProvider.
type DevProvider struct {
	issuer *tokenIssuer

	mu        sync.Mutex
	accounts  map[string]account
	token     string
	listeners map[int]func(accesscore.IdentityEvent, *accesscore.Identity)
	nextID    int
}

// NewDevProvider creates an empty [DevProvider].
func NewDevProvider(cfg Config) (*DevProvider, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("idp: signing key must be at least 32 bytes")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	return &DevProvider{
		issuer: &tokenIssuer{
			key: cfg.SigningKey,
			ttl: cfg.TokenTTL,
			now: time.Now,
		},
		accounts:  map[string]account{},
		listeners: map[int]func(accesscore.IdentityEvent, *accesscore.Identity){},
	}, nil
}

// Register adds an account and returns its subject id. Registering an
// existing address replaces its secret and metadata but keeps the
// subject id stable.
func (p *DevProvider) Register(address, secret string, metadata map[string]string) (string, error) {
	hash, err := hashSecret(secret)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[address]
	if !ok {
		acct = account{subjectID: uuid.NewString()}
	}
	acct.secretHash = hash
	acct.metadata = metadata
	p.accounts[address] = acct
	return acct.subjectID, nil
}

// SignIn implements accesscore.IdentityProvider.
func (p *DevProvider) SignIn(_ context.Context, address, secret string) error {
	p.mu.Lock()
	acct, ok := p.accounts[address]
	p.mu.Unlock()
	if !ok {
		return ErrInvalidCredentials
	}

	match, err := verifySecret(secret, acct.secretHash)
	if err != nil || !match {
		return ErrInvalidCredentials
	}

	token, err := p.issuer.issue(acct.subjectID, address)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.notify(accesscore.EventSignedIn, p.identityFor(address, acct))
	return nil
}

// SignOut implements accesscore.IdentityProvider.
func (p *DevProvider) SignOut(context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()

	p.notify(accesscore.EventSignedOut, nil)
	return nil
}

// CurrentIdentity implements accesscore.IdentityProvider. It returns
// (nil, nil) when no session is live or the token has expired.
func (p *DevProvider) CurrentIdentity(context.Context) (*accesscore.Identity, error) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()

	if token == "" {
		return nil, nil
	}
	claims, err := p.issuer.parse(token)
	if err != nil {
		// An expired or garbled token is a dead session, not an error.
		p.mu.Lock()
		if p.token == token {
			p.token = ""
		}
		p.mu.Unlock()
		return nil, nil
	}

	p.mu.Lock()
	acct := p.accounts[claims.Address]
	p.mu.Unlock()

	return p.identityFor(claims.Address, acct), nil
}

// RefreshToken reissues the session token for the live session without
// changing the subject, mirroring an identity platform's silent token
// rotation.
func (p *DevProvider) RefreshToken(ctx context.Context) error {
	identity, err := p.CurrentIdentity(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		return errors.New("idp: no live session to refresh")
	}

	token, err := p.issuer.issue(identity.SubjectID, identity.Address)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.notify(accesscore.EventTokenRefreshed, identity)
	return nil
}

// OnIdentityChange implements accesscore.IdentityProvider. The returned
// unsubscribe function is safe to call more than once.
func (p *DevProvider) OnIdentityChange(fn func(accesscore.IdentityEvent, *accesscore.Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *DevProvider) identityFor(address string, acct account) *accesscore.Identity {
	var metadata map[string]string
	if len(acct.metadata) > 0 {
		metadata = make(map[string]string, len(acct.metadata))
		for k, v := range acct.metadata {
			metadata[k] = v
		}
	}
	return &accesscore.Identity{
		SubjectID: acct.subjectID,
		Address:   address,
		Metadata:  metadata,
	}
}

func (p *DevProvider) notify(event accesscore.IdentityEvent, identity *accesscore.Identity) {
	p.mu.Lock()
	fns := make([]func(accesscore.IdentityEvent, *accesscore.Identity), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(event, identity)
	}
}
