package bridge

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"zapper/internal/device"
)

// NonceCache deduplicates repeated action requests per device. A request
// carrying a nonce the cache has already seen gets the original response
// back instead of reaching the TV twice.
type NonceCache struct {
	deviceCaches map[string]*lru.Cache[string, *cachedResponse]
	mutex        sync.RWMutex
	maxSize      int
	expiration   time.Duration
	stop         chan struct{}
}

type cachedResponse struct {
	response *device.ActionResponse
	storedAt time.Time
}

// NewNonceCache creates a nonce cache and starts its cleanup routine
func NewNonceCache(maxSize int, expiration time.Duration) *NonceCache {
	if maxSize <= 0 {
		maxSize = 50
	}
	if expiration <= 0 {
		expiration = time.Hour
	}

	nc := &NonceCache{
		deviceCaches: make(map[string]*lru.Cache[string, *cachedResponse]),
		maxSize:      maxSize,
		expiration:   expiration,
		stop:         make(chan struct{}),
	}

	go nc.cleanupLoop()

	return nc
}

// GenerateNonce generates a unique nonce with timestamp and random component
func GenerateNonce() string {
	timestamp := time.Now().UnixMilli()

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		// Fallback to pseudo-random if crypto/rand fails
		timestamp += int64(time.Now().Nanosecond())
		randomBytes = []byte{
			byte(timestamp >> 24),
			byte(timestamp >> 16),
			byte(timestamp >> 8),
			byte(timestamp),
		}
	}

	// Format: timestamp_ms-random_hex
	return fmt.Sprintf("%d-%x", timestamp, randomBytes)
}

// ValidateNonce checks the timestamp-hex nonce format, e.g. 1691234567890-a1b2c3d4
func ValidateNonce(nonce string) bool {
	timestamp, random, found := strings.Cut(nonce, "-")
	if !found || strings.Contains(random, "-") {
		return false
	}

	// Unix timestamps in milliseconds are 13+ digits
	if len(timestamp) < 13 {
		return false
	}
	for _, c := range timestamp {
		if c < '0' || c > '9' {
			return false
		}
	}

	if len(random) != 8 {
		return false
	}
	for _, c := range random {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}

func (nc *NonceCache) deviceCache(deviceID string) *lru.Cache[string, *cachedResponse] {
	nc.mutex.Lock()
	defer nc.mutex.Unlock()

	cache, exists := nc.deviceCaches[deviceID]
	if !exists {
		cache, _ = lru.New[string, *cachedResponse](nc.maxSize)
		nc.deviceCaches[deviceID] = cache
	}

	return cache
}

// Check returns the cached response for a nonce the device has already
// answered. An empty nonce is treated as a new request.
func (nc *NonceCache) Check(deviceID, nonce string) (*device.ActionResponse, bool) {
	if nonce == "" {
		return nil, false
	}

	cache := nc.deviceCache(deviceID)
	cached, found := cache.Get(nonce)
	if !found {
		return nil, false
	}

	if time.Since(cached.storedAt) > nc.expiration {
		cache.Remove(nonce)
		return nil, false
	}

	return cached.response, true
}

// Store records the response delivered for a nonce
func (nc *NonceCache) Store(deviceID, nonce string, response *device.ActionResponse) {
	if nonce == "" {
		return
	}

	nc.deviceCache(deviceID).Add(nonce, &cachedResponse{
		response: response,
		storedAt: time.Now(),
	})
}

// Len returns the number of cached nonces for a device
func (nc *NonceCache) Len(deviceID string) int {
	nc.mutex.RLock()
	cache, exists := nc.deviceCaches[deviceID]
	nc.mutex.RUnlock()

	if !exists {
		return 0
	}
	return cache.Len()
}

func (nc *NonceCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			nc.removeExpired()
		case <-nc.stop:
			return
		}
	}
}

func (nc *NonceCache) removeExpired() {
	nc.mutex.RLock()
	caches := make(map[string]*lru.Cache[string, *cachedResponse], len(nc.deviceCaches))
	for deviceID, cache := range nc.deviceCaches {
		caches[deviceID] = cache
	}
	nc.mutex.RUnlock()

	now := time.Now()
	for deviceID, cache := range caches {
		for _, nonce := range cache.Keys() {
			if cached, found := cache.Peek(nonce); found && now.Sub(cached.storedAt) > nc.expiration {
				cache.Remove(nonce)
			}
		}

		if cache.Len() == 0 {
			nc.mutex.Lock()
			delete(nc.deviceCaches, deviceID)
			nc.mutex.Unlock()
		}
	}
}

// Shutdown stops the cleanup routine and drops all cached responses
func (nc *NonceCache) Shutdown() {
	close(nc.stop)

	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	for _, cache := range nc.deviceCaches {
		cache.Purge()
	}
	nc.deviceCaches = make(map[string]*lru.Cache[string, *cachedResponse])
}
