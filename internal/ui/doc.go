// Package ui provides the full-screen terminal front end for the live viewer.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program layered over viewer.Controller. It owns no
// session state of its own: producer lines, ticks and the producer's exit
// are merged by viewer.Merge on a forwarder goroutine and delivered to the
// program as messages, and key presses are translated into controller
// commands. Every action therefore reaches the controller from the Bubble
// Tea update loop, which keeps the controller single-threaded.
//
// # Layout
//
//   - Header: title, a badge for the current mode and the rendered message count
//   - Body: a viewport over the render.Sink scrollback
//   - Footer: the short key help
//
// The body follows new output while it is scrolled to the end. Scrolling up
// stops following; returning to the bottom (G or end) resumes it.
//
// # Keys
//
//	space        pause/resume rendering
//	s            show the stats line
//	h, ?         show help and the agent legend
//	q, esc       quit (the producer is terminated)
//	ctrl+c       interrupt (same as quit)
//	k/j, arrows  scroll one line
//	pgup/pgdown  scroll one page
//	g/G          top / bottom
//
// # Shutdown
//
// The program quits as soon as the controller reports the session over. The
// alternate screen is discarded on exit, so callers print
// Controller.Epilogue afterwards.
package ui
