package accesscore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockProvider struct {
	mu        sync.Mutex
	identity  *Identity
	secrets   map[string]string
	subjects  map[string]string
	listeners []func(IdentityEvent, *Identity)

	signInCalls  int
	signOutCalls int
	signInErr    error
	signOutErr   error

	// emitOnSignIn makes SignIn fire EventSignedIn on success, the way a
	// conforming event-emitting provider does.
	emitOnSignIn bool
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		secrets:  map[string]string{},
		subjects: map[string]string{},
	}
}

func (p *mockProvider) addUser(address, secret, subjectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.secrets[address] = secret
	p.subjects[address] = subjectID
}

func (p *mockProvider) CurrentIdentity(context.Context) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil {
		return nil, nil
	}
	id := *p.identity
	return &id, nil
}

func (p *mockProvider) OnIdentityChange(fn func(IdentityEvent, *Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
	i := len(p.listeners) - 1
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if i < len(p.listeners) {
			p.listeners[i] = nil
		}
	}
}

func (p *mockProvider) SignIn(_ context.Context, address, secret string) error {
	p.mu.Lock()
	p.signInCalls++
	if p.signInErr != nil {
		p.mu.Unlock()
		return p.signInErr
	}
	if p.secrets[address] != secret {
		p.mu.Unlock()
		return fmt.Errorf("invalid credentials for %s", address)
	}
	id := Identity{
		SubjectID: p.subjects[address],
		Address:   address,
	}
	p.identity = &id
	emit := p.emitOnSignIn
	p.mu.Unlock()

	if emit {
		p.fire(EventSignedIn, &id)
	}
	return nil
}

func (p *mockProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	if p.signOutErr != nil {
		return p.signOutErr
	}
	p.identity = nil
	return nil
}

func (p *mockProvider) fire(event IdentityEvent, identity *Identity) {
	p.mu.Lock()
	listeners := append([]func(IdentityEvent, *Identity){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(event, identity)
		}
	}
}

type mockStore struct {
	mu             sync.Mutex
	usersBySubject map[string]UserRecord
	businesses     map[string][]Business
	nextID         int

	findErr     error
	createErr   error
	businessErr error

	findCalls     int
	createCalls   int
	businessCalls int

	// findHook, when set, runs before each lookup with the lock released.
	findHook func(subjectID string)
}

func newMockStore() *mockStore {
	return &mockStore{
		usersBySubject: map[string]UserRecord{},
		businesses:     map[string][]Business{},
	}
}

func (s *mockStore) addUser(record UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersBySubject[record.SubjectID] = record
}

func (s *mockStore) addBusiness(b Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses[b.OwnerID] = append(s.businesses[b.OwnerID], b)
}

func (s *mockStore) FindUserBySubjectID(_ context.Context, subjectID string) (*UserRecord, error) {
	s.mu.Lock()
	hook := s.findHook
	s.mu.Unlock()
	if hook != nil {
		hook(subjectID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	record, ok := s.usersBySubject[subjectID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := record
	return &out, nil
}

func (s *mockStore) CreateUser(_ context.Context, record UserRecord) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	record.ID = fmt.Sprintf("u-%d", s.nextID)
	record.CreatedAt = time.Now()
	s.usersBySubject[record.SubjectID] = record
	out := record
	return &out, nil
}

func (s *mockStore) FindBusinessesByOwner(_ context.Context, userID string) ([]Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businessCalls++
	if s.businessErr != nil {
		return nil, s.businessErr
	}
	return append([]Business{}, s.businesses[userID]...), nil
}

func newTestEngine(t *testing.T, provider *mockProvider, store *mockStore, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithIdentityProvider(provider).
		WithRecordStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (s *mockStore) findCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}
