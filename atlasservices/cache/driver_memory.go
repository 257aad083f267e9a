package cache

import (
	"context"
	"sync"
	"time"
)

const memoryCleanupInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (entry memoryEntry) expired(now time.Time) bool {
	return !now.Before(entry.expiresAt)
}

// NewDriverMemory keeps entries in process. Expired entries are swept every
// minute until ctx is done.
func NewDriverMemory(ctx context.Context) (Driver, error) {
	driver := &driverMemory{
		entries: map[string]memoryEntry{},
	}

	go func() {
		ticker := time.NewTicker(memoryCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				driver.sweep(now)
			}
		}
	}()

	return driver, nil
}

type driverMemory struct {
	mutex   sync.RWMutex
	entries map[string]memoryEntry
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.entries, key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	driver.mutex.RLock()
	defer driver.mutex.RUnlock()

	entry, found := driver.entries[key]
	if !found || entry.expired(time.Now()) {
		return "", ErrNotFound
	}

	return entry.value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(duration),
	}

	return nil
}

func (driver *driverMemory) sweep(now time.Time) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key, entry := range driver.entries {
		if entry.expired(now) {
			delete(driver.entries, key)
		}
	}
}
