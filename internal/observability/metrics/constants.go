// Package metrics provides custom Prometheus metrics for fireinspect.
package metrics

// Record kinds extracted from a report
const (
	KindDevice = "device"
	KindLight  = "light"
	KindNote   = "note"
)

// SkipUnmatchedBuilding is the reason a report file is skipped
const SkipUnmatchedBuilding = "unmatched_building"

// Remote store operations
const (
	OpList  = "list"
	OpPatch = "patch"
)

// Building update outcomes
const (
	OutcomeUpdated  = "updated"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
	OutcomeDryRun   = "dry_run"
)

// StatusTransportError labels a remote request that got no HTTP response.
const StatusTransportError = "transport_error"
