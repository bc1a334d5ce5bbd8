package tracker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/testutil"
	"github.com/datachat-labs/datachat/internal/tracker"
)

func issuesHandler(t *testing.T, issues []tracker.Issue) func(string, interface{}) error {
	t.Helper()

	return func(_ string, response interface{}) error {
		raw, err := json.Marshal(issues)
		require.NoError(t, err)

		return json.Unmarshal(raw, response)
	}
}

func testTrackerConfig() config.TrackerConfig {
	return config.TrackerConfig{Owner: "acme", Repo: "widgets", MaxIssues: 30}
}

func TestClient_Query(t *testing.T) {
	issues := []tracker.Issue{
		{Number: 12, Title: "Login page crashes on Safari", State: "open"},
		{Number: 9, Title: "Add CSV export", State: "closed", Body: "Shipped in v1.2"},
	}

	rest := testutil.NewMockRESTClient(issuesHandler(t, issues))
	llm := testutil.NewMockLLM(testutil.WithResponses("There is one open issue: #12, a Safari crash on the login page."))

	client := tracker.NewClientWithREST(testTrackerConfig(), rest, llm, testutil.NewTestLogger())
	require.True(t, client.Initialized())

	answer, err := client.Query(context.Background(), "what issues are open?")
	require.NoError(t, err)
	assert.Contains(t, answer, "#12")

	// The issues ground the prompt
	require.Len(t, llm.Calls, 1)
	assert.Contains(t, llm.Calls[0].UserPrompt, "#12 [open] Login page crashes on Safari")
	assert.Contains(t, llm.Calls[0].UserPrompt, "Shipped in v1.2")
	assert.Contains(t, llm.Calls[0].UserPrompt, "what issues are open?")

	// The request carries repo and the configured page size
	require.Len(t, rest.Paths, 1)
	assert.Contains(t, rest.Paths[0], "repos/acme/widgets/issues")
	assert.Contains(t, rest.Paths[0], "per_page=30")
}

func TestClient_Query_HTMLBodyConverted(t *testing.T) {
	issues := []tracker.Issue{
		{Number: 3, Title: "Docs", State: "open", Body: "<p>See the <strong>manual</strong></p>"},
	}

	rest := testutil.NewMockRESTClient(issuesHandler(t, issues))
	llm := testutil.NewMockLLM(testutil.WithResponses("ok"))

	client := tracker.NewClientWithREST(testTrackerConfig(), rest, llm, testutil.NewTestLogger())

	_, err := client.Query(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, llm.Calls, 1)
	assert.Contains(t, llm.Calls[0].UserPrompt, "**manual**")
	assert.NotContains(t, llm.Calls[0].UserPrompt, "<strong>")
}

func TestClient_Query_FetchError(t *testing.T) {
	rest := testutil.NewMockRESTClient(func(string, interface{}) error {
		return fmt.Errorf("HTTP 403: rate limit exceeded")
	})

	client := tracker.NewClientWithREST(testTrackerConfig(), rest, testutil.NewMockLLM(), testutil.NewTestLogger())

	_, err := client.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch issues")
}

func TestClient_Verify(t *testing.T) {
	issues := []tracker.Issue{{Number: 1, Title: "a", State: "open"}, {Number: 2, Title: "b", State: "open"}}

	rest := testutil.NewMockRESTClient(issuesHandler(t, issues))
	client := tracker.NewClientWithREST(testTrackerConfig(), rest, testutil.NewMockLLM(), testutil.NewTestLogger())

	status, err := client.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Connected to acme/widgets. Found 2 recent issues.", status)
}

func TestNewClient_MissingConfig(t *testing.T) {
	client := tracker.NewClient(config.TrackerConfig{}, testutil.NewMockLLM(), testutil.NewTestLogger())

	assert.False(t, client.Initialized())

	_, err := client.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
