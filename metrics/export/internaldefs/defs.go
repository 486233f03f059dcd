package internaldefs

import (
	goFieldOps "github.com/MrEthical07/goFieldOps"
)

// BucketCount is the number of refresh-latency buckets, +Inf included.
const BucketCount = 8

type CounterDef struct {
	ID   goFieldOps.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goFieldOps.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported session counter in render order.
var CounterDefs = []CounterDef{
	{ID: goFieldOps.MetricRequestDispatched, Name: "fieldops_request_dispatched_total", Help: "Requests sent to the API, replays included."},
	{ID: goFieldOps.MetricUnauthorized, Name: "fieldops_unauthorized_total", Help: "401 responses intercepted by the session."},
	{ID: goFieldOps.MetricRefreshStarted, Name: "fieldops_refresh_started_total", Help: "Refresh calls issued."},
	{ID: goFieldOps.MetricRefreshSuccess, Name: "fieldops_refresh_success_total", Help: "Refresh cycles that produced a new access token."},
	{ID: goFieldOps.MetricRefreshFailure, Name: "fieldops_refresh_failure_total", Help: "Refresh cycles that ended the session."},
	{ID: goFieldOps.MetricRequestQueued, Name: "fieldops_request_queued_total", Help: "Requests parked behind an in-flight refresh."},
	{ID: goFieldOps.MetricRequestReplayed, Name: "fieldops_request_replayed_total", Help: "Requests redispatched after a 401."},
	{ID: goFieldOps.MetricReplayUnauthorized, Name: "fieldops_replay_unauthorized_total", Help: "Replays rejected with 401 again."},
	{ID: goFieldOps.MetricStaleTokenReplay, Name: "fieldops_stale_token_replay_total", Help: "401s replayed with a token refreshed while they were in flight."},
	{ID: goFieldOps.MetricForcedLogout, Name: "fieldops_forced_logout_total", Help: "Sessions ended by an unrecoverable 401."},
	{ID: goFieldOps.MetricLogin, Name: "fieldops_login_total", Help: "Credential pairs stored."},
	{ID: goFieldOps.MetricLogout, Name: "fieldops_logout_total", Help: "Explicit sign-outs."},
}

var HistogramDefs = []HistogramDef{
	{ID: goFieldOps.MetricRefreshLatency, Name: "fieldops_refresh_latency_seconds", Help: "Refresh call latency."},
}

// HistogramBounds mirrors the bucket edges of goFieldOps.Metrics in seconds.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
