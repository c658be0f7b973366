package observable_test

import (
	"context"
	"sync"

	"github.com/equilobe/library-go/library/shared/shell"
)

type mockCommand struct {
	ID string
}

func (mockCommand) CommandType() string { return "TestCommand" }

type mockHandler struct {
	mu     sync.Mutex
	result shell.HandlerResult
	err    error
	calls  []mockCommand
}

func newMockHandler(result shell.HandlerResult, err error) *mockHandler {
	return &mockHandler{result: result, err: err}
}

func (h *mockHandler) Handle(_ context.Context, command mockCommand) (shell.HandlerResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = append(h.calls, command)

	return h.result, h.err
}

func (h *mockHandler) GetCalls() []mockCommand {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]mockCommand(nil), h.calls...)
}

type mockQuery struct{}

func (mockQuery) QueryType() string { return "TestQuery" }

type mockQueryResult struct {
	Items []string
}

func (r mockQueryResult) ItemCount() int { return len(r.Items) }

type mockQueryHandler struct {
	result mockQueryResult
	err    error
}

func (h mockQueryHandler) Handle(_ context.Context, _ mockQuery) (mockQueryResult, error) {
	return h.result, h.err
}
