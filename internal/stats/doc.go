// Package stats keeps the running counters of a viewing session.
//
// # Counters
//
// The Aggregator tracks:
//
//   - the number of conversation messages actually shown to the operator
//   - the number of output lines that were not recognised as events
//   - per-agent tallies (sent, received, status updates, last status)
//
// Elapsed time and the message rate are never stored. Snapshot derives them
// from the injected clock each time it is called, so repeated snapshots with
// no intervening updates are identical.
//
// # Rate
//
// The rate is the integer floor of count / max(elapsedSeconds, 1):
//
//	7 messages after 3.5s -> floor(7 / 3) = 2 msg/s
//
// # Reporting
//
// WriteSummary prints the final stats line and a rounded go-pretty table of
// the per-agent tallies when the session ends.
package stats
