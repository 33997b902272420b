package internaldefs

import (
	"github.com/marcwael/sealsession"
)

// CounterDef defines a public type used by sealsession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sealsession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by sealsession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sealsession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session store.
var CounterDefs = []CounterDef{
	{ID: sealsession.MetricReadHit, Name: "sealsession_read_hit_total", Help: "Reads that resolved to a session."},
	{ID: sealsession.MetricReadMiss, Name: "sealsession_read_miss_total", Help: "Reads that resolved to no session."},
	{ID: sealsession.MetricUnsealFailure, Name: "sealsession_unseal_failure_total", Help: "Cookies rejected by the codec."},
	{ID: sealsession.MetricRefreshSuccess, Name: "sealsession_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: sealsession.MetricRefreshFailure, Name: "sealsession_refresh_failure_total", Help: "Failed token refresh operations."},
	{ID: sealsession.MetricClientFactoryFailure, Name: "sealsession_client_factory_failure_total", Help: "Provider client construction failures."},
	{ID: sealsession.MetricSaveSuccess, Name: "sealsession_save_success_total", Help: "Sessions sealed and written."},
	{ID: sealsession.MetricSealFailure, Name: "sealsession_seal_failure_total", Help: "Sessions the codec failed to seal."},
	{ID: sealsession.MetricSessionCleared, Name: "sealsession_session_cleared_total", Help: "Session cookies expired by Clear."},
}

// HistogramDefs is an exported constant or variable used by the session store.
var HistogramDefs = []HistogramDef{
	{ID: sealsession.MetricReadLatency, Name: "sealsession_read_latency_seconds", Help: "Read latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session store.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session store.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
