package weather

import "sync"

type subscription struct {
	city string
	ch   chan Report
}

// Hub fans out fresh reports to subscribers of a city.
type Hub struct {
	mu     sync.Mutex
	byCity map[string]map[*subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{byCity: make(map[string]map[*subscription]struct{})}
}

// Subscribe returns a channel that receives every report published for city and a
// cancel func that closes it. Only the newest undelivered report is kept.
func (h *Hub) Subscribe(city string) (<-chan Report, func()) {
	sub := &subscription{city: CacheKey(city), ch: make(chan Report, 1)}

	h.mu.Lock()
	set, ok := h.byCity[sub.city]
	if !ok {
		set = make(map[*subscription]struct{})
		h.byCity[sub.city] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.remove(sub) })
	}
	return sub.ch, cancel
}

// Publish delivers report without blocking. A subscriber that has not drained its
// previous report gets it replaced by this one.
func (h *Hub) Publish(city string, report Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.byCity[CacheKey(city)] {
		select {
		case sub.ch <- report:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- report
		}
	}
}

// Subscribers returns the number of open subscriptions for city.
func (h *Hub) Subscribers(city string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byCity[CacheKey(city)])
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.byCity[sub.city]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.byCity, sub.city)
		}
	}
	close(sub.ch)
}
