package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ren/internal/core"
	"ren/internal/project"
)

// Bump when ScanPayload or core.ArrayImage changes shape.
const diskCacheSchemaVersion uint16 = 1

var schemaSalt = []byte(fmt.Sprintf("ren-scan-v%d", diskCacheSchemaVersion))

// DiskCache keeps scanned scripts on disk, keyed by a hash of their text,
// so a rerun of an unchanged script skips the scanner. Safe for
// concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// ScanPayload is one cached script.
type ScanPayload struct {
	Schema uint16
	Path   string
	Hash   project.Digest
	Image  *core.ArrayImage
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app, or
// ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// KeyFor derives the cache key of a script from its content hash and
// path. The path is part of the key because scanned arrays record it.
func KeyFor(content project.Digest, path string) project.Digest {
	return project.Combine(content, schemaSalt, []byte(path))
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "scan", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload. The file is replaced atomically.
func (c *DiskCache) Put(key project.Digest, payload *ScanPayload) (err error) {
	if c == nil {
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
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload stored under key. A payload of another schema
// or for different content is reported as a miss.
func (c *DiskCache) Get(key project.Digest, out *ScanPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("scan cache %s: %w", f.Name(), err)
	}
	if out.Schema != diskCacheSchemaVersion || out.Image == nil {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
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
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
