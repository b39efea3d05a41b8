package widget

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// visitorKey is the storage key the visitor id persists under
const visitorKey = "df_visitor_id"

// DefaultIdentityTTL is how long a visitor id stays pinned to a device
// before a fresh one is minted
const DefaultIdentityTTL = 30 * 24 * time.Hour

// Store persists small key/value pairs on the visitor's device, the way a
// cookie jar or localStorage would. Values expire after their TTL.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

// Fingerprinter derives a stable identifier from device characteristics
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// FingerprintFunc adapts a plain function to the Fingerprinter interface
type FingerprintFunc func(ctx context.Context) (string, error)

func (f FingerprintFunc) Fingerprint(ctx context.Context) (string, error) {
	return f(ctx)
}

// DeviceFingerprint hashes device characteristics (user agent, locale,
// screen size, timezone) into a hex digest suitable for visitor-generate
func DeviceFingerprint(components ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(sum[:])
}

// Identity resolves which visitor id the widget should act as. A stored
// id is reused while its TTL holds; otherwise a new id is minted from the
// device fingerprint and persisted for DefaultIdentityTTL.
type Identity struct {
	api       *Client
	store     Store
	fp        Fingerprinter
	ttl       time.Duration
	userAgent string
}

// IdentityOption configures an Identity
type IdentityOption func(*Identity)

// WithIdentityTTL overrides how long visitor ids persist on the device
func WithIdentityTTL(ttl time.Duration) IdentityOption {
	return func(i *Identity) {
		i.ttl = ttl
	}
}

// WithUserAgent sets the user agent reported on visitor-generate
func WithUserAgent(ua string) IdentityOption {
	return func(i *Identity) {
		i.userAgent = ua
	}
}

// NewIdentity creates an identity resolver backed by the given device
// store and fingerprinter
func NewIdentity(api *Client, store Store, fp Fingerprinter, opts ...IdentityOption) *Identity {
	i := &Identity{
		api:   api,
		store: store,
		fp:    fp,
		ttl:   DefaultIdentityTTL,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// VisitorID returns the visitor id to use for this session. Reusing the
// stored id refreshes its TTL, so an active visitor never rolls over
// mid-campaign. A fingerprinting failure aborts: without an identity the
// widget cannot hold a deadline stable across visits.
func (i *Identity) VisitorID(ctx context.Context) (string, error) {
	if id, ok := i.store.Get(visitorKey); ok && id != "" {
		i.store.Set(visitorKey, id, i.ttl)
		return id, nil
	}

	print, err := i.fp.Fingerprint(ctx)
	if err != nil {
		return "", fmt.Errorf("fingerprinting device: %w", err)
	}

	resp, err := i.api.GenerateVisitor(ctx, models.GenerateVisitorRequest{
		Fingerprint: print,
		UserAgent:   i.userAgent,
	})
	if err != nil {
		return "", err
	}

	i.store.Set(visitorKey, resp.VisitorID, i.ttl)
	return resp.VisitorID, nil
}

// MemoryStore is an in-process Store with per-key expiry. It stands in
// for the browser's persistent storage in servers, tests, and CLI hosts.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory device store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get returns the stored value if present and not expired
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return "", false
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		delete(s.items, key)
		return "", false
	}
	return item.value, true
}

// Set stores a value; a zero ttl means the value never expires
func (s *MemoryStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = item
}

// Delete removes a key
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}
