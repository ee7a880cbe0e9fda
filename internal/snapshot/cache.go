package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is the newest snapshot document version understood by the
// loader. It also versions the cache payload: bump it when Document changes.
const SchemaVersion = 1

// Digest identifies snapshot content in the cache.
type Digest [32]byte

// DigestOf hashes the raw snapshot bytes together with their format.
func DigestOf(content []byte, format Format) Digest {
	h := sha256.New()
	h.Write([]byte{byte(format)})
	h.Write(content)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Cache stores decoded snapshot documents on disk so repeated runs over the
// same snapshot skip TOML/YAML decoding. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema   uint16
	Document Document
}

// OpenCache opens the cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheDir(filepath.Join(base, app))
}

// OpenCacheDir opens a cache rooted at dir.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "snap", hex.EncodeToString(key[:])+".mp")
}

// Put stores doc under key. The file is replaced atomically.
func (c *Cache) Put(key Digest, doc *Document) (err error) {
	if c == nil || doc == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&cachePayload{Schema: SchemaVersion, Document: *doc}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get loads the document stored under key. Entries written with another
// schema version are reported as misses.
func (c *Cache) Get(key Digest) (*Document, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != SchemaVersion {
		return nil, false, nil
	}
	return &payload.Document, true, nil
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
