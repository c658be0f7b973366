// Package dispatch routes commands and queries to the handler registered for their type.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/equilobe/library-go/library/shared/shell"
)

var (
	ErrNoHandlerRegistered      = errors.New("no handler registered")
	ErrHandlerAlreadyRegistered = errors.New("handler already registered")
	ErrUnsupportedRequest       = errors.New("request is neither a command nor a query")
	ErrUnexpectedResponse       = errors.New("handler returned an unexpected response type")
)

type handlerFunc func(ctx context.Context, request any) (any, error)

// Dispatcher is safe for concurrent use. Register all handlers before sending.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]handlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]handlerFunc)}
}

// RegisterCommand routes commands of type C to handler. The route key is C's CommandType.
func RegisterCommand[C shell.Command](d *Dispatcher, handler shell.CoreCommandHandler[C]) error {
	var zeroCommand C

	return d.register(zeroCommand.CommandType(), func(ctx context.Context, request any) (any, error) {
		return handler.Handle(ctx, request.(C)) //nolint:forcetypeassert // routed by type key
	})
}

// RegisterQuery routes queries of type Q to handler. The route key is Q's QueryType.
func RegisterQuery[Q shell.Query, R shell.QueryResult](d *Dispatcher, handler shell.CoreQueryHandler[Q, R]) error {
	var zeroQuery Q

	return d.register(zeroQuery.QueryType(), func(ctx context.Context, request any) (any, error) {
		return handler.Handle(ctx, request.(Q)) //nolint:forcetypeassert // routed by type key
	})
}

// Send hands request to its handler and returns whatever the handler returned.
func (d *Dispatcher) Send(ctx context.Context, request any) (any, error) {
	key, err := routeKey(request)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	handler, ok := d.handlers[key]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandlerRegistered, key)
	}

	return handler(ctx, request)
}

// SendCommand is Send with the command handler's result type.
func SendCommand[C shell.Command](ctx context.Context, d *Dispatcher, command C) (shell.HandlerResult, error) {
	response, err := d.Send(ctx, command)

	result, ok := response.(shell.HandlerResult)
	if !ok && err == nil {
		return shell.HandlerResult{}, ErrUnexpectedResponse
	}

	return result, err
}

// SendQuery is Send with the query handler's result type.
func SendQuery[Q shell.Query, R shell.QueryResult](ctx context.Context, d *Dispatcher, query Q) (R, error) {
	response, err := d.Send(ctx, query)

	result, ok := response.(R)
	if !ok && err == nil {
		return result, ErrUnexpectedResponse
	}

	return result, err
}

func (d *Dispatcher) register(key string, handler handlerFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[key]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, key)
	}

	d.handlers[key] = handler

	return nil
}

func routeKey(request any) (string, error) {
	switch r := request.(type) {
	case shell.Command:
		return r.CommandType(), nil
	case shell.Query:
		return r.QueryType(), nil
	default:
		return "", ErrUnsupportedRequest
	}
}
