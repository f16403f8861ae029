// Package logparse classifies raw producer output lines into typed events.
//
// The producer's output is only partly structured. Two line shapes carry
// meaning:
//
//	CONVERSATION LOG: [<timestamp>] <From> -> <To> (<Type>): <content>
//	🤖 AGENT STATUS UPDATE: <payload>
//
// Anything may precede the marker. Every other line (blank lines, progress
// chatter, stack traces) is not an event and Parse reports false for it.
package logparse

import (
	"regexp"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
)

const (
	// ConversationMarker prefixes every conversation line.
	ConversationMarker = "CONVERSATION LOG: "
	// StatusMarker prefixes every status line.
	StatusMarker = "🤖 AGENT STATUS UPDATE: "
)

var (
	conversationRe = regexp.MustCompile(regexp.QuoteMeta(ConversationMarker) +
		`\[([^\]]+)\] (\S+) -> (\S+) \(([^\s()]+)\): (.+)`)
	statusRe      = regexp.MustCompile(regexp.QuoteMeta(StatusMarker) + `(.+)`)
	attributionRe = regexp.MustCompile(`^([^\s:]+): (.+)`)
)

// Kind distinguishes event types.
type Kind int

const (
	KindConversation Kind = iota + 1
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindConversation:
		return "conversation"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Event is either a ConversationEvent or a StatusEvent.
type Event interface {
	Kind() Kind
}

// ConversationEvent is one message from one agent to another.
type ConversationEvent struct {
	Timestamp   string
	From        roster.ID
	To          roster.ID
	MessageType string
	Content     string
}

// Kind implements Event.
func (ConversationEvent) Kind() Kind { return KindConversation }

// StatusEvent is a free-standing status notice. Agent is empty when the
// payload carried no "<Agent>: " prefix.
type StatusEvent struct {
	Agent  roster.ID
	Status string
}

// Kind implements Event.
func (StatusEvent) Kind() Kind { return KindStatus }

// Attributed reports whether the status names an agent.
func (s StatusEvent) Attributed() bool { return s.Agent != "" }

// Parse classifies line. The conversation shape is tried first. The
// returned bool is false when the line matches neither shape; that is the
// normal outcome for unstructured output, not an error.
func Parse(line string) (Event, bool) {
	if m := conversationRe.FindStringSubmatch(line); m != nil {
		return ConversationEvent{
			Timestamp:   m[1],
			From:        roster.ID(m[2]),
			To:          roster.ID(m[3]),
			MessageType: m[4],
			Content:     m[5],
		}, true
	}
	if m := statusRe.FindStringSubmatch(line); m != nil {
		return parseStatus(m[1]), true
	}
	return nil, false
}

func parseStatus(payload string) StatusEvent {
	if m := attributionRe.FindStringSubmatch(payload); m != nil {
		return StatusEvent{Agent: roster.ID(m[1]), Status: m[2]}
	}
	return StatusEvent{Status: payload}
}
