package observability

import "sync"

type observe struct {
	Kind    string
	Label   string
	Status  int
	OK      bool
	Dur     float64
	CacheMs float64
	DbMs    float64
}

// Inmem keeps the last max observations and running totals. It backs tests
// and local debugging where a Prometheus registry is overkill.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
		finalize             map[string]int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Label: source, CacheMs: cacheMs, DbMs: dbMs})
}

func (m *Inmem) ObserveFinalize(outcome string, durMs float64) {
	m.mu.Lock()
	if m.totals.finalize == nil {
		m.totals.finalize = make(map[string]int)
	}
	m.totals.finalize[outcome]++
	m.mu.Unlock()

	m.push(&observe{Kind: "finalize", Label: outcome, Dur: durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Label: method + " " + route, Status: status, Dur: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(&observe{Kind: "kafka", Dur: processMs, OK: ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// Finalized returns how many finalizations ended with the given outcome.
func (m *Inmem) Finalized(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.finalize[outcome]
}
