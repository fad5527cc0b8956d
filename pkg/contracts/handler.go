package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Runner is a long-lived component (e.g. an event consumer) that runs
// until its context is cancelled.
type Runner interface {
	Start(ctx context.Context) error
	Close() error
}
