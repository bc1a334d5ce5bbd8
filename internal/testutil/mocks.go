// Package testutil provides mocks and helpers shared across package tests
package testutil

import (
	"context"
	"sync"
)

// MockLLM implements llm.Service for testing with scripted responses
type MockLLM struct {
	mu sync.Mutex

	responses []string
	err       error
	next      int

	// Calls records every (system, user) prompt pair in order
	Calls []LLMCall
}

// LLMCall is one recorded Complete invocation
type LLMCall struct {
	SystemPrompt string
	UserPrompt   string
}

// MockLLMOption is a functional option for configuring MockLLM
type MockLLMOption func(*MockLLM)

// WithResponses sets the responses returned in order; the last one repeats
func WithResponses(responses ...string) MockLLMOption {
	return func(m *MockLLM) {
		m.responses = responses
	}
}

// WithLLMError makes every Complete call fail with err
func WithLLMError(err error) MockLLMOption {
	return func(m *MockLLM) {
		m.err = err
	}
}

// NewMockLLM creates a mock language model service with the given options
func NewMockLLM(opts ...MockLLMOption) *MockLLM {
	mock := &MockLLM{}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

// Complete returns the next scripted response
func (m *MockLLM) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, LLMCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})

	if m.err != nil {
		return "", m.err
	}

	if len(m.responses) == 0 {
		return "", nil
	}

	resp := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}

	return resp, nil
}

// CallCount returns how many times Complete was invoked
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}

// MockAssistant implements router.Assistant for testing
type MockAssistant struct {
	mu sync.Mutex

	initialized bool
	reply       string
	err         error

	// Queries records every question received
	Queries []string
}

// MockAssistantOption is a functional option for configuring MockAssistant
type MockAssistantOption func(*MockAssistant)

// WithInitialized sets whether the assistant reports itself ready
func WithInitialized(ready bool) MockAssistantOption {
	return func(m *MockAssistant) {
		m.initialized = ready
	}
}

// WithReply sets the answer returned for every query
func WithReply(reply string) MockAssistantOption {
	return func(m *MockAssistant) {
		m.reply = reply
	}
}

// WithQueryError makes every query fail with err
func WithQueryError(err error) MockAssistantOption {
	return func(m *MockAssistant) {
		m.err = err
	}
}

// NewMockAssistant creates a mock assistant; initialized defaults to true
func NewMockAssistant(opts ...MockAssistantOption) *MockAssistant {
	mock := &MockAssistant{initialized: true}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

// Initialized reports the configured readiness
func (m *MockAssistant) Initialized() bool {
	return m.initialized
}

// Query records the question and returns the configured reply
func (m *MockAssistant) Query(_ context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, text)

	if m.err != nil {
		return "", m.err
	}

	return m.reply, nil
}

// MockRESTClient implements tracker.RESTClient with a scripted handler
type MockRESTClient struct {
	mu sync.Mutex

	handler func(path string, response interface{}) error

	// Paths records every requested path in order
	Paths []string
}

// NewMockRESTClient creates a mock REST client backed by handler
func NewMockRESTClient(handler func(path string, response interface{}) error) *MockRESTClient {
	return &MockRESTClient{handler: handler}
}

// Get records the path and delegates to the handler
func (m *MockRESTClient) Get(path string, response interface{}) error {
	m.mu.Lock()
	m.Paths = append(m.Paths, path)
	m.mu.Unlock()

	if m.handler == nil {
		return nil
	}

	return m.handler(path, response)
}
