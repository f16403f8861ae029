// Package render turns parsed events into colorized display units.
//
// A unit is what one event looks like on screen:
//
//	Builder → Synthesizer [COORDINATION]
//	  💬 Ready
//
//	⚡ Catalyst: Prototype complete!
//
// Agent names are colored from the roster. Conversation content is cut to the
// configured width (in terminal cells) and marked with "...". Events offered
// while the viewer is paused are dropped; notices are always shown. The most
// recent units are kept in a bounded scrollback.
package render
