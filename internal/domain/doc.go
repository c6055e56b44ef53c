// Package domain models the SwellSync surf data: spots, baseline forecasts,
// live estimates, and the global system status row.
//
// # Data layers
//
// A Spot is static reference data (identity, display name, region,
// coordinates), seeded once and never mutated by the service.
//
// A Forecast is the latest externally supplied baseline per spot, refreshed
// on a slow cadence (hours) from the StormGlass API. Rows may be arbitrarily
// stale or entirely absent; readers substitute the documented fallback via
// [ResolveBaseline] rather than treating a gap as an error.
//
// A LiveEstimate is the fast-refreshing (seconds) derived figure produced by
// the correction pipeline. Exactly one row per spot is kept: the latest
// snapshot, upserted each recomputation cycle. No history is retained.
//
// SystemStatus is a singleton row describing the engine as a whole. Its
// active-agent count and reliability are fixed display values, not measured
// ones; only the timestamp and status label change, once per cycle.
//
// # Units and ranges
//
//	wave height       meters, >= 0
//	wave period       seconds, > 0
//	wave direction    degrees, 0-360
//	wind speed        km/h, >= 0
//	wind direction    degrees, 0-360
//	peak wave height  meters, >= wave height over the forecast window
//
// # Reliability
//
// Reliability is the constant "100.00". It is a display property of the
// pipeline's consensus design, deliberately hardcoded, and is stamped onto
// every published estimate regardless of inputs.
package domain
