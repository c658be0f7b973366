package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/dispatch"
)

type pingCommand struct{ Name string }

func (pingCommand) CommandType() string { return "Ping" }

type pingHandler struct{ received []pingCommand }

func (h *pingHandler) Handle(_ context.Context, command pingCommand) (shell.HandlerResult, error) {
	h.received = append(h.received, command)
	return shell.HandlerResult{RetryAttempts: 1}, nil
}

type countQuery struct{}

func (countQuery) QueryType() string { return "Count" }

type countResult struct{ Count int }

func (r countResult) ItemCount() int { return 1 }

type countHandler struct{}

func (countHandler) Handle(context.Context, countQuery) (countResult, error) {
	return countResult{Count: 7}, nil
}

func Test_Dispatcher_RoutesCommandsAndQueries(t *testing.T) {
	// arrange
	dispatcher := dispatch.NewDispatcher()
	commands := &pingHandler{}
	require.NoError(t, dispatch.RegisterCommand[pingCommand](dispatcher, commands), "error in arranging test data")
	require.NoError(t, dispatch.RegisterQuery[countQuery, countResult](dispatcher, countHandler{}), "error in arranging test data")

	// act
	commandResult, commandErr := dispatch.SendCommand(t.Context(), dispatcher, pingCommand{Name: "a"})
	queryResult, queryErr := dispatch.SendQuery[countQuery, countResult](t.Context(), dispatcher, countQuery{})
	rawResult, rawErr := dispatcher.Send(t.Context(), pingCommand{Name: "b"})

	// assert
	require.NoError(t, commandErr)
	require.NoError(t, queryErr)
	require.NoError(t, rawErr)
	assert.Equal(t, 1, commandResult.RetryAttempts)
	assert.Equal(t, 7, queryResult.Count)
	assert.IsType(t, shell.HandlerResult{}, rawResult)
	assert.Equal(t, []pingCommand{{Name: "a"}, {Name: "b"}}, commands.received)
}

func Test_Dispatcher_RejectsDuplicateRegistration(t *testing.T) {
	dispatcher := dispatch.NewDispatcher()
	require.NoError(t, dispatch.RegisterCommand[pingCommand](dispatcher, &pingHandler{}), "error in arranging test data")

	err := dispatch.RegisterCommand[pingCommand](dispatcher, &pingHandler{})

	assert.ErrorIs(t, err, dispatch.ErrHandlerAlreadyRegistered)
}

func Test_Dispatcher_Send_Failures(t *testing.T) {
	dispatcher := dispatch.NewDispatcher()

	_, unknownErr := dispatcher.Send(t.Context(), pingCommand{})
	_, unsupportedErr := dispatcher.Send(t.Context(), "not a request")

	assert.ErrorIs(t, unknownErr, dispatch.ErrNoHandlerRegistered)
	assert.ErrorIs(t, unsupportedErr, dispatch.ErrUnsupportedRequest)
}
