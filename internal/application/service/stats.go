package service

import "time"

type LookupSource string

const (
	SourceCache LookupSource = "cache"
	SourceDB    LookupSource = "db"
)

type LookupStats struct {
	Source  LookupSource
	CacheMs float64
	DBMs    float64
}

// FinalizeStats holds per-step durations. Steps that did not run stay zero.
type FinalizeStats struct {
	LookupMs        float64
	CustomerMailMs  float64
	DeveloperMailMs float64
	SaveMs          float64
}

func convertToMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
