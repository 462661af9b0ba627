package services

import (
	"context"
	"sync"
)

// MockLLM is a mock implementation of LLMService for testing.
type MockLLM struct {
	Configured       bool
	GenerateTextFunc func(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)

	// Track calls for testing
	GenerateTextCalls []GenerateTextCall

	mu sync.Mutex // protects GenerateTextCalls
}

type GenerateTextCall struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a configured mock LLM service.
func NewMockLLM() *MockLLM {
	return &MockLLM{
		Configured:        true,
		GenerateTextCalls: make([]GenerateTextCall, 0),
	}
}

func (m *MockLLM) IsConfigured() bool {
	return m.Configured
}

func (m *MockLLM) GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	m.mu.Lock()
	m.GenerateTextCalls = append(m.GenerateTextCalls, GenerateTextCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	m.mu.Unlock()

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, systemPrompt, userPrompt, temperature, maxTokens)
	}
	return "", nil
}

// CallCount returns the number of GenerateText calls made so far.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateTextCalls)
}
