// Package config loads liveview settings.
//
// # Configuration Sources
//
// Settings are resolved in this order, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML file: an explicit path, or ~/.config/liveview/config.toml
//  3. LIVEVIEW_* environment variables
//  4. Command-line flags, applied by the caller before Validate
//
// A missing config file is not an error. Empty values in the file keep the
// default.
//
// # TOML Format
//
//	command = ["node", "agent-communication.js"]
//	dir = "~/agents"
//	stats_interval = "30s"      # 0 disables the periodic stats line
//	terminate_timeout = "3s"
//	content_width = 120
//	scrollback = 2000
//	inherit_stdin = true        # plain mode only
//	theme = "Nightfox"
//	log_file = "~/.local/state/liveview.log"
//	log_level = "info"
//	debug = false
//	summary = true
//
//	[colors]
//	Scout = "14"
//
// # Environment
//
// Every scalar key has an environment form: the key upper-cased with the
// LIVEVIEW_ prefix, e.g. LIVEVIEW_STATS_INTERVAL=10s. LIVEVIEW_COMMAND is
// split on whitespace. Roster colors are file-only.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, TOML
// syntax errors and invalid values. All of them are reported before the
// producer is started.
package config
