package relaysdk

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// CacheLifetime is how long a fetched token is reused. It is deliberately
// shorter than the server's 15 minutes so a token never expires mid-flight.
const CacheLifetime = 10*time.Minute - 5*time.Second

// CachedToken is a bearer token together with the moment the client stops
// trusting it.
type CachedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the record can still be presented at now.
func (c CachedToken) Valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// TokenCache holds at most one client token. Storage problems are never
// surfaced: a broken cache behaves like an empty one.
type TokenCache interface {
	Load() (CachedToken, bool)
	Save(token string) CachedToken
	Clear()
}

// ============================================================================
// MemoryTokenCache
// ============================================================================

// MemoryTokenCache keeps the token for the lifetime of the process.
type MemoryTokenCache struct {
	// Now defaults to time.Now.
	Now func() time.Time

	mu  sync.Mutex
	rec CachedToken
}

func (m *MemoryTokenCache) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryTokenCache) Load() (CachedToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.rec.Valid(m.now()) {
		return CachedToken{}, false
	}
	return m.rec, true
}

func (m *MemoryTokenCache) Save(token string) CachedToken {
	rec := CachedToken{Token: token, ExpiresAt: m.now().Add(CacheLifetime)}
	m.store(rec)
	return rec
}

func (m *MemoryTokenCache) store(rec CachedToken) {
	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()
}

func (m *MemoryTokenCache) Clear() {
	m.store(CachedToken{})
}

// ============================================================================
// FileTokenCache
// ============================================================================

// FileTokenCache persists the token as JSON (mode 0600) so consecutive CLI
// runs share it. Access is serialised across processes with an advisory lock
// next to the file. When the file cannot be written the record lives on in
// memory for the rest of the process. The zero value with Path set is ready
// to use; an empty Path behaves like a MemoryTokenCache.
type FileTokenCache struct {
	Path string

	// Now defaults to time.Now.
	Now func() time.Time

	lockOnce sync.Once
	lock     *flock.Flock
	fallback MemoryTokenCache
}

// NewFileTokenCache returns a cache backed by path.
func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{Path: path}
}

// fileLock creates the advisory lock for Path on first use.
func (f *FileTokenCache) fileLock() *flock.Flock {
	f.lockOnce.Do(func() {
		if f.Path != "" {
			f.lock = flock.New(f.Path + ".lock")
		}
	})
	return f.lock
}

// DefaultCachePath is $XDG_CACHE_HOME/acconvert/token.json, or the platform
// equivalent.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "acconvert", "token.json")
}

func (f *FileTokenCache) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *FileTokenCache) Load() (CachedToken, bool) {
	f.fallback.Now = f.Now
	if rec, ok := f.readFile(); ok && rec.Valid(f.now()) {
		return rec, true
	}
	return f.fallback.Load()
}

func (f *FileTokenCache) Save(token string) CachedToken {
	rec := CachedToken{Token: token, ExpiresAt: f.now().Add(CacheLifetime)}
	if err := f.writeFile(rec); err != nil {
		f.fallback.store(rec)
	}
	return rec
}

func (f *FileTokenCache) Clear() {
	f.fallback.Clear()

	lock := f.fileLock()
	if lock == nil {
		return
	}
	if err := lock.Lock(); err != nil {
		_ = os.Remove(f.Path)
		return
	}
	defer func() { _ = lock.Unlock() }()
	_ = os.Remove(f.Path)
}

func (f *FileTokenCache) readFile() (CachedToken, bool) {
	lock := f.fileLock()
	if lock == nil {
		return CachedToken{}, false
	}
	if err := lock.RLock(); err != nil {
		return CachedToken{}, false
	}
	defer func() { _ = lock.Unlock() }()

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return CachedToken{}, false
	}

	var rec CachedToken
	if err := json.Unmarshal(raw, &rec); err != nil || strings.TrimSpace(rec.Token) == "" {
		return CachedToken{}, false
	}
	return rec, true
}

func (f *FileTokenCache) writeFile(rec CachedToken) error {
	if f.Path == "" {
		return errors.New("no cache path")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	lock := f.fileLock()
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".token-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
