package router

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-labs/datachat/internal/testutil"
)

func newTestRouter(assistants map[Intent]Assistant) *Router {
	return New(assistants, testutil.NewTestLogger())
}

func TestRouter_Route(t *testing.T) {
	data := testutil.NewMockAssistant()
	tracker := testutil.NewMockAssistant()

	rt := newTestRouter(map[Intent]Assistant{
		IntentData:         data,
		IntentIssueTracker: tracker,
	})

	tests := []struct {
		name     string
		message  string
		intent   Intent
		reason   Reason
	}{
		{
			name:    "plain data question",
			message: "how many employees does Walmart have?",
			intent:  IntentData,
			reason:  ReasonDefault,
		},
		{
			name:    "ticket keyword",
			message: "what tickets are open?",
			intent:  IntentIssueTracker,
			reason:  ReasonKeywordMatch,
		},
		{
			name:    "jira keyword uppercase",
			message: "Any JIRA updates today?",
			intent:  IntentIssueTracker,
			reason:  ReasonKeywordMatch,
		},
		{
			name:    "sprint keyword",
			message: "how is the sprint going",
			intent:  IntentIssueTracker,
			reason:  ReasonKeywordMatch,
		},
		{
			name:    "keyword inside larger word",
			message: "what issues are blocking us",
			intent:  IntentIssueTracker,
			reason:  ReasonKeywordMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := rt.Route(tt.message)
			assert.Equal(t, tt.intent, decision.Intent)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestRouter_Route_TrackerUnavailable(t *testing.T) {
	data := testutil.NewMockAssistant()

	// No tracker assistant registered: ticket vocabulary falls back to data
	rt := newTestRouter(map[Intent]Assistant{IntentData: data})

	decision := rt.Route("show me the open tickets")
	assert.Equal(t, IntentData, decision.Intent)
	assert.Equal(t, ReasonDefault, decision.Reason)
}

func TestRouter_Route_TrackerUninitialized(t *testing.T) {
	data := testutil.NewMockAssistant()
	tracker := testutil.NewMockAssistant(testutil.WithInitialized(false))

	rt := newTestRouter(map[Intent]Assistant{
		IntentData:         data,
		IntentIssueTracker: tracker,
	})

	decision := rt.Route("show me the open tickets")
	assert.Equal(t, IntentData, decision.Intent)
}

func TestRouter_Route_NothingAvailable(t *testing.T) {
	rt := newTestRouter(map[Intent]Assistant{})

	decision := rt.Route("hello")
	assert.Equal(t, IntentNone, decision.Intent)
	assert.Equal(t, ReasonUnavailable, decision.Reason)
}

func TestRouter_Dispatch(t *testing.T) {
	data := testutil.NewMockAssistant(testutil.WithReply("Walmart has 2,100,000 employees."))

	rt := newTestRouter(map[Intent]Assistant{IntentData: data})

	decision := rt.Route("how many employees does Walmart have?")
	reply := rt.Dispatch(context.Background(), decision, "how many employees does Walmart have?")

	assert.Equal(t, "Walmart has 2,100,000 employees.", reply)
	require.Len(t, data.Queries, 1)
	assert.Equal(t, "how many employees does Walmart have?", data.Queries[0])
}

func TestRouter_Dispatch_NoAssistant(t *testing.T) {
	rt := newTestRouter(map[Intent]Assistant{})

	reply := rt.Dispatch(context.Background(), Decision{Intent: IntentNone, Reason: ReasonUnavailable}, "hello")

	assert.Contains(t, reply, "couldn't process your query")
}

func TestRouter_Dispatch_AssistantError(t *testing.T) {
	data := testutil.NewMockAssistant(testutil.WithQueryError(fmt.Errorf("backend unavailable")))

	rt := newTestRouter(map[Intent]Assistant{IntentData: data})

	reply := rt.Dispatch(context.Background(), Decision{Intent: IntentData, Reason: ReasonDefault}, "question")

	assert.Contains(t, reply, "Sorry, an error occurred while processing your message")
}

func TestRouter_Dispatch_TruncatesLongReplies(t *testing.T) {
	long := strings.Repeat("a", 4000)
	data := testutil.NewMockAssistant(testutil.WithReply(long))

	rt := newTestRouter(map[Intent]Assistant{IntentData: data})

	reply := rt.Dispatch(context.Background(), Decision{Intent: IntentData, Reason: ReasonDefault}, "question")

	assert.True(t, strings.HasSuffix(reply, TruncationMarker))
	assert.Equal(t, MaxDispatchLength, utf8.RuneCountInString(strings.TrimSuffix(reply, TruncationMarker)))
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello"))
	})

	t.Run("exact length unchanged", func(t *testing.T) {
		text := strings.Repeat("x", MaxDispatchLength)
		assert.Equal(t, text, Truncate(text))
	})

	t.Run("long text cut to prefix plus marker", func(t *testing.T) {
		text := strings.Repeat("x", MaxDispatchLength+1)
		got := Truncate(text)

		assert.True(t, strings.HasPrefix(text, strings.TrimSuffix(got, TruncationMarker)))
		assert.Equal(t, MaxDispatchLength+utf8.RuneCountInString(TruncationMarker), utf8.RuneCountInString(got))
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		text := strings.Repeat("é", MaxDispatchLength+10)
		got := Truncate(text)

		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, TruncationMarker))
		assert.Equal(t, strings.Repeat("é", MaxDispatchLength), strings.TrimSuffix(got, TruncationMarker))
	})
}
