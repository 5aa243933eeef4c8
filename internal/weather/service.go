package weather

import (
	"context"
	"log"
	"strings"
)

// Fetcher obtains a fresh report for a city. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (Report, error)
}

// Service keeps the last known report per city and pushes fresh ones to subscribers.
// A failed refresh never overwrites what is cached.
type Service struct {
	fetcher     Fetcher
	cache       Cache
	hub         *Hub
	defaultCity string
}

// NewService wires a fetcher and cache. A nil cache falls back to memory.
func NewService(fetcher Fetcher, cache Cache, defaultCity string) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{
		fetcher:     fetcher,
		cache:       cache,
		hub:         NewHub(),
		defaultCity: strings.TrimSpace(defaultCity),
	}
}

// DefaultCity is used when a caller passes a blank city.
func (s *Service) DefaultCity() string {
	return s.defaultCity
}

func (s *Service) city(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return s.defaultCity
	}
	return city
}

// Latest returns the cached report without touching the network.
func (s *Service) Latest(city string) (Report, bool) {
	city = s.city(city)
	report, ok, err := s.cache.Get(city)
	if err != nil {
		log.Printf("[weather] read cache for %s failed: %v", city, err)
		return Report{}, false
	}
	return report, ok
}

// Refresh fetches city, stores the result and publishes it. On failure the error is
// logged and returned, and the cached report is left untouched.
func (s *Service) Refresh(ctx context.Context, city string) (Report, error) {
	city = s.city(city)
	if city == "" {
		return Report{}, ErrCityRequired
	}

	report, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		log.Printf("[weather] refresh %s failed: %v", city, err)
		return Report{}, err
	}

	if err := s.cache.Put(city, report); err != nil {
		log.Printf("[weather] write cache for %s failed: %v", city, err)
	}
	s.hub.Publish(city, report)
	return report, nil
}

// Current returns the cached report, fetching once when nothing is cached yet.
func (s *Service) Current(ctx context.Context, city string) (Report, error) {
	if report, ok := s.Latest(city); ok {
		return report, nil
	}
	return s.Refresh(ctx, city)
}

// Subscribe streams every successful refresh of city until cancel is called.
func (s *Service) Subscribe(city string) (<-chan Report, func()) {
	return s.hub.Subscribe(s.city(city))
}

// Subscribers reports how many streams are open for city.
func (s *Service) Subscribers(city string) int {
	return s.hub.Subscribers(s.city(city))
}
