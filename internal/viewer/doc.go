// Package viewer implements the interactive session controller.
//
// # State Machine
//
//	           space                 q / esc / ctrl+c / SIGINT / producer exit
//	RUNNING <─────────> PAUSED ───────────────────────────────> SHUTTING_DOWN
//	   │                                                              ▲
//	   └──────────────────────────────────────────────────────────────┘
//
// Stats and help requests are served in RUNNING and PAUSED and never change
// the state. The periodic stats tick is shown only while RUNNING.
//
// # Single Consumer
//
// Producer output, keyboard commands, timer ticks and the producer's exit are
// independent sources. Merge turns them into one channel of Actions and the
// Controller handles them one at a time, so the controller state and the
// stats counters have exactly one writer. Run is the loop for plain
// (non-interactive) mode; the terminal UI feeds the same actions through its
// own update loop instead.
//
// # Shutdown
//
// Entering SHUTTING_DOWN terminates the producer (idempotent and bounded),
// prints a farewell and ends the loop. The exit code is the producer's when
// it exited first, and 0 when the operator quit.
package viewer
