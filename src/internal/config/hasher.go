package config

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"
)

const hashCacheTTL = 30 * time.Second

// Hasher tracks the MD5 of the configuration the daemon runs with and of the
// file on disk, so callers can tell when a restart would pick up changes.
type Hasher struct {
	configPath string

	currentHash     string
	currentHashTime time.Time

	activeHash string

	mu sync.RWMutex
}

func NewHasher(configPath string) *Hasher {
	return &Hasher{configPath: configPath}
}

// Hash returns the MD5 of the serialized configuration. Two configs with the
// same effective values hash equally regardless of file formatting.
func Hash(c *Config) (string, error) {
	buf, err := c.SerializeConfig()
	if err != nil {
		return "", err
	}
	sum := md5.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// SetActive records the configuration the daemon was started with.
func (h *Hasher) SetActive(c *Config) error {
	hash, err := Hash(c)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activeHash = hash
	return nil
}

func (h *Hasher) Active() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.activeHash
}

// Current returns the hash of the file on disk, cached for hashCacheTTL.
func (h *Hasher) Current() (string, error) {
	h.mu.RLock()
	if time.Since(h.currentHashTime) < hashCacheTTL && h.currentHash != "" {
		hash := h.currentHash
		h.mu.RUnlock()
		return hash, nil
	}
	h.mu.RUnlock()

	return h.Refresh()
}

// Refresh rereads the file and resets the cache.
func (h *Hasher) Refresh() (string, error) {
	cfg, err := LoadConfig(h.configPath)
	if err != nil {
		return "", err
	}
	hash, err := Hash(cfg)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentHash = hash
	h.currentHashTime = time.Now()
	return hash, nil
}

// Outdated reports whether the file differs from the active configuration.
func (h *Hasher) Outdated() (bool, error) {
	current, err := h.Current()
	if err != nil {
		return false, err
	}
	active := h.Active()
	return active != "" && active != current, nil
}
