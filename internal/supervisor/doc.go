// Package supervisor launches the producer process and turns its output into
// line channels.
//
// # Lifecycle
//
//	Spawn() ──> cmd.Start()
//	              │
//	              ├─ stdout pump ─> Stdout() chan (closed at EOF)
//	              ├─ stderr pump ─> Stderr() chan (closed at EOF)
//	              │
//	              └─ cmd.Wait() ─> Done() closed
//	                    │
//	                    └─ both pumps done ─> Exit() <- status
//
// Each stream is split on '\n' ("\r\n" is tolerated). A trailing line with no
// newline is delivered once at end of stream. Lines longer than MaxLineBytes
// are cut to that length and reading continues with the next line. Order
// within a stream is preserved; there is no ordering between the two streams.
//
// The producer is reaped as soon as it exits. Its pipes are then read until
// EOF, or until they have been silent for the grace period, which happens
// when a background child inherited them.
//
// # Termination
//
// Terminate is idempotent and bounded:
//
//  1. Stop forwarding lines (pipes keep draining so the producer cannot block)
//  2. SIGTERM, wait up to the grace period
//  3. SIGKILL, wait up to the grace period
//  4. Give up with ErrTerminationTimeout
//
// Terminate after the producer has already exited returns nil immediately.
package supervisor
