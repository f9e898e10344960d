package observability

// Finalization outcomes reported to ObserveFinalize.
const (
	OutcomeOK                 = "ok"
	OutcomeNotFound           = "not_found"
	OutcomeNotificationFailed = "notification_failed"
	OutcomePersistenceFailed  = "persistence_failed"
)

type Metrics interface {
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveFinalize(outcome string, durMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveKafka(processMs float64, ok bool)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveFinalize(string, float64)          {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveKafka(float64, bool)               {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
