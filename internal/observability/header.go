package observability

import (
	"fmt"
	"net/http"
	"strings"
)

// Timing is one Server-Timing metric.
type Timing struct {
	Name  string
	DurMs float64
	Desc  string
}

// String renders t as a Server-Timing entry. A timing with neither a positive
// duration nor a description renders as "".
func (t Timing) String() string {
	var params strings.Builder
	if t.DurMs > 0 {
		fmt.Fprintf(&params, ";dur=%.2f", t.DurMs)
	}
	if t.Desc != "" {
		fmt.Fprintf(&params, ";desc=%q", t.Desc)
	}
	if params.Len() == 0 {
		return ""
	}
	return t.Name + params.String()
}

func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	AppendServerTimings(w, Timing{Name: name, DurMs: durMs, Desc: desc})
}

// AppendServerTimings adds one header value per timing, in order. Steps that
// never ran (zero duration, no description) are left out.
func AppendServerTimings(w http.ResponseWriter, timings ...Timing) {
	h := w.Header()
	for _, t := range timings {
		if v := t.String(); v != "" {
			h.Add("Server-Timing", v)
		}
	}
}

// SetIfPos sets key to ms with two decimals; a non-positive ms leaves any
// earlier value in place.
func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, fmt.Sprintf("%.2f", ms))
	}
}
