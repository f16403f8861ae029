// Package app provides the orchestration layer for liveview.
//
// # Overview
//
// This package wires together configuration, logging, the producer
// supervisor, the render sink and the session controller. It serves as the
// composition root where all dependencies are initialized and connected.
//
// # Startup
//
//  1. Load config (file, then LIVEVIEW_* environment) and apply flags
//  2. Choose the front end: the TUI when stdin and stdout are terminals and
//     --plain is not set, plain line output otherwise
//  3. Build the logger (log file, stderr in plain mode, discarded under the TUI)
//  4. Spawn the producer; failure here is fatal and nothing is rendered
//  5. Build the roster, sink, stats aggregator and controller
//  6. Start the stats ticker and run the front end until the session ends
//  7. Print the per-agent summary table unless disabled
//
// # Data Flow
//
//	┌──────────────┐
//	│  producer    │ stdout / stderr lines, exit status
//	└──────┬───────┘
//	       │
//	       ├─────> supervisor.Process   line channels
//	       ├─────> StartTicker()        periodic stats
//	       └─────> viewer.Merge()       one action stream
//	                  │
//	                  └─> viewer.Controller ─> render.Sink ─> terminal
//
// # Exit Codes
//
// Run returns the producer's exit code when the producer ended the session
// and 0 when the operator quit or interrupted. Configuration and startup
// errors are returned as errors with code 1.
//
// # Usage Example
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	code, err := app.Run(ctx, app.Options{Command: []string{"node", "agent-communication.js"}})
//	if err != nil {
//		fmt.Fprintf(os.Stderr, "liveview: %v\n", err)
//	}
//	os.Exit(code)
package app
