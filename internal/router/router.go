// Package router decides, per inbound message, which assistant should
// handle it, and applies channel-level formatting to the outbound text.
// Routing is stateless: every message is decided independently.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/datachat-labs/datachat/internal/logging"
)

// Intent identifies a downstream assistant
type Intent string

const (
	IntentData         Intent = "data"
	IntentIssueTracker Intent = "issue_tracker"
	IntentNone         Intent = "none"
)

// Reason records why a message was routed where it was
type Reason string

const (
	ReasonKeywordMatch Reason = "keyword-match"
	ReasonDefault      Reason = "default"
	ReasonUnavailable  Reason = "unavailable"
)

// Decision is the routing outcome for one message. Derived per message,
// never persisted.
type Decision struct {
	Intent Intent `json:"intent"`
	Reason Reason `json:"reason"`
}

// Assistant is the capability surface the router calls through. It never
// inspects an assistant's internals.
type Assistant interface {
	Initialized() bool
	Query(ctx context.Context, text string) (string, error)
}

// Outbound channel limits
const (
	// MaxDispatchLength is the hard cap on outbound payload length, in runes
	MaxDispatchLength = 1500

	// TruncationMarker is appended whenever the outbound text was cut
	TruncationMarker = "... (message truncated due to length)"
)

const noAssistantText = "I'm sorry, I couldn't process your query. Please try asking a question " +
	"about your data, or mention the issue tracker for ticket-related queries."

// intentKeywords is the dispatch table mapping intents to the vocabulary
// that selects them. The matching rule is data: tests exercise it directly
// and a deployment can extend it without touching routing logic.
var intentKeywords = map[Intent][]string{
	IntentIssueTracker: {"jira", "ticket", "issue", "sprint", "backlog", "epic"},
}

// Router selects an assistant per inbound message and dispatches to it
type Router struct {
	assistants map[Intent]Assistant
	log        *logging.Logger
}

// New creates a router over the available assistants. A nil assistant means
// the intent is not offered in this deployment.
func New(assistants map[Intent]Assistant, log *logging.Logger) *Router {
	return &Router{assistants: assistants, log: log}
}

// Route picks the assistant for a message. A message carrying issue-tracker
// vocabulary routes there when that assistant is available and initialized;
// everything else defaults to the data assistant.
func (r *Router) Route(message string) Decision {
	lower := strings.ToLower(message)

	for intent, keywords := range intentKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) && r.available(intent) {
				return Decision{Intent: intent, Reason: ReasonKeywordMatch}
			}
		}
	}

	if r.available(IntentData) {
		return Decision{Intent: IntentData, Reason: ReasonDefault}
	}

	return Decision{Intent: IntentNone, Reason: ReasonUnavailable}
}

// Dispatch forwards the message to the decided assistant and applies the
// channel truncation to whatever comes back. Truncation happens here, after
// synthesis, so it can never corrupt mid-generation.
func (r *Router) Dispatch(ctx context.Context, decision Decision, message string) string {
	if decision.Intent == IntentNone {
		return noAssistantText
	}

	assistant := r.assistants[decision.Intent]

	response, err := assistant.Query(ctx, message)
	if err != nil {
		r.log.WithField("intent", string(decision.Intent)).WithError(err).Error("assistant query failed")

		response = fmt.Sprintf("Sorry, an error occurred while processing your message: %v", err)
	}

	return Truncate(response)
}

// available reports whether an assistant exists and is initialized
func (r *Router) available(intent Intent) bool {
	assistant, ok := r.assistants[intent]
	return ok && assistant != nil && assistant.Initialized()
}

// Truncate cuts text to MaxDispatchLength runes and appends the marker.
// The truncated text is always a prefix of the original.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxDispatchLength {
		return text
	}

	return string(runes[:MaxDispatchLength]) + TruncationMarker
}
