package weather

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron"
)

// DefaultSchedule refreshes every tracked city twice an hour.
const DefaultSchedule = "@every 30m"

// CityLister returns the cities that should be kept warm.
type CityLister interface {
	Cities() ([]string, error)
}

// Refresher periodically refreshes every listed city.
type Refresher struct {
	cron    *cron.Cron
	service *Service
	cities  CityLister
	timeout time.Duration
}

// NewRefresher builds a refresher; call Schedule then Start.
func NewRefresher(service *Service, cities CityLister) *Refresher {
	return &Refresher{
		cron:    cron.New(),
		service: service,
		cities:  cities,
		timeout: 15 * time.Second,
	}
}

// Schedule registers RefreshAll on the cron spec, e.g. "@every 30m".
func (r *Refresher) Schedule(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	log.Printf("[weather] scheduling refresh on %s", spec)
	return r.cron.AddFunc(spec, r.RefreshAll)
}

// RefreshAll refreshes each city in turn. Failures are logged by the service and do
// not stop the remaining cities.
func (r *Refresher) RefreshAll() {
	cities, err := r.cities.Cities()
	if err != nil {
		log.Printf("[weather] list cities failed: %v", err)
		return
	}
	if len(cities) == 0 {
		log.Println("[weather] no cities to refresh")
		return
	}

	refreshed := 0
	for _, city := range cities {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if _, err := r.service.Refresh(ctx, city); err == nil {
			refreshed++
		}
		cancel()
	}
	log.Printf("[weather] refreshed %d/%d cities", refreshed, len(cities))
}

func (r *Refresher) Start() {
	r.cron.Start()
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}
