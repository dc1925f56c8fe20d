// Package timesync maps simulated scheduler ticks onto wall-clock time.
//
// Traces count time in abstract ticks starting at 0. Exporters that need real
// timestamps (span start and end) place tick 0 at an epoch and scale every
// tick by a fixed duration.
package timesync
