package weather

import (
	"strings"
	"sync"
)

// Cache holds the last known report per city.
// Implementations must be safe for use by concurrent goroutines.
type Cache interface {
	Get(city string) (Report, bool, error)
	Put(city string, report Report) error
}

// CacheKey normalizes a city name so "Taipei" and " taipei" share an entry.
func CacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

type memoryCache struct {
	reports map[string]Report
	mutex   *sync.RWMutex
}

// NewMemoryCache creates an in-process cache that is lost on restart.
func NewMemoryCache() Cache {
	return &memoryCache{
		reports: make(map[string]Report),
		mutex:   &sync.RWMutex{},
	}
}

func (m *memoryCache) Get(city string) (Report, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	report, ok := m.reports[CacheKey(city)]
	return report, ok, nil
}

func (m *memoryCache) Put(city string, report Report) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.reports[CacheKey(city)] = report
	return nil
}
