package llm

import "context"

// MockClient replays scripted responses in order. Used by engine tests.
type MockClient struct {
	// Responses are returned one per Complete call. A nil error entry (or
	// short Errs slice) means the call succeeds.
	Responses []string
	Errs      []error

	Calls []Prompt
	Keys  []string
}

func (m *MockClient) Complete(_ context.Context, apiKey string, prompt Prompt) (string, error) {
	i := len(m.Calls)
	m.Calls = append(m.Calls, prompt)
	m.Keys = append(m.Keys, apiKey)

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	if len(m.Responses) > 0 {
		return m.Responses[len(m.Responses)-1], nil
	}
	return "", nil
}
