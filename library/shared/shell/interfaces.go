package shell

import (
	"context"
)

// Command is a request to change library state, e.g. returning a book.
// CommandType names the command in logs, metrics and spans.
type Command interface {
	CommandType() string
}

// CoreCommandHandler executes one command type with business logic only.
// Observability is added by the observable package.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query is a read-only request, e.g. listing books.
type Query interface {
	QueryType() string
}

// QueryResult reports how many items a query produced, for logs and spans.
type QueryResult interface {
	ItemCount() int
}

// CoreQueryHandler answers one query type with business logic only.
type CoreQueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
