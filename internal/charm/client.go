// ABOUTME: Charm KV client wrapper for cloud-synced completion storage
// ABOUTME: SSH-key identity from charm doubles as the signed-in user
package charm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
	// Offline stores data in a local Badger database and never contacts a
	// charm server
	Offline bool
}

// DefaultConfig returns default configuration for charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "cloud.charm.sh"
	}
	return &Config{
		Host:     host,
		DBName:   "mealstreak",
		AutoSync: true,
	}
}

// OfflineDir returns where an offline client keeps its data
func OfflineDir(dbName string) string {
	return filepath.Join(xdg.DataHome, "mealstreak", "kv", dbName)
}

// Client wraps a KV for completion storage
type Client struct {
	kv     KV
	config *Config
	mu     sync.Mutex
}

// NewClient creates a client with the given config. Offline configs open a
// local Badger database; everything else opens charm cloud KV.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Offline {
		local, err := OpenLocalKV(OfflineDir(cfg.DBName))
		if err != nil {
			return nil, err
		}
		return NewClientWithKV(local, cfg), nil
	}

	// charm reads the host from the environment
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := NewClientWithKV(db, cfg)

	// Pull remote data on startup
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// NewClientWithKV wraps an already open KV
func NewClientWithKV(store KV, cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Client{kv: store, config: cfg}
}

// Config returns the client's config
func (c *Client) Config() *Config {
	return c.config
}

// Close closes the KV database
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

func (c *Client) syncIfEnabled() error {
	if c.config.AutoSync {
		return c.kv.Sync()
	}
	return nil
}

// ID returns the charm user ID. Offline clients have no charm identity.
func (c *Client) ID() (string, error) {
	if c.config.Offline {
		return "", fmt.Errorf("offline client has no charm identity")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// Set stores a value and syncs when auto-sync is on
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("client is closed")
	}
	if err := c.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	if err := c.syncIfEnabled(); err != nil {
		return fmt.Errorf("failed to sync after set: %w", err)
	}
	return nil
}

// Get retrieves a value by key. A missing key returns ErrNotFound.
func (c *Client) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return nil, fmt.Errorf("client is closed")
	}
	value, err := c.kv.Get([]byte(key))
	if isNotFound(err) || (err == nil && value == nil) {
		return nil, ErrNotFound
	}
	return value, err
}

// DeleteKey removes a key and syncs when auto-sync is on
func (c *Client) DeleteKey(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("client is closed")
	}
	if err := c.kv.Delete([]byte(key)); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	if err := c.syncIfEnabled(); err != nil {
		return fmt.Errorf("failed to sync after delete: %w", err)
	}
	return nil
}

// ListKeys returns all keys with the given prefix
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return nil, fmt.Errorf("client is closed")
	}
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		keyStr := string(key)
		if strings.HasPrefix(keyStr, prefix) {
			result = append(result, keyStr)
		}
	}
	return result, nil
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("client is closed")
	}
	return c.kv.Sync()
}

// Reset wipes all local data
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("client is closed")
	}
	return c.kv.Reset()
}

// AuthorizedKeys returns the list of linked devices/keys
func (c *Client) AuthorizedKeys() (string, error) {
	if c.config.Offline {
		return "", fmt.Errorf("offline client has no linked keys")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.AuthorizedKeys()
}

// UnlinkKey removes an authorized key from the account
func (c *Client) UnlinkKey(key string) error {
	if c.config.Offline {
		return fmt.Errorf("offline client has no linked keys")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.UnlinkAuthorizedKey(key)
}
