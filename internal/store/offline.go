package store

import (
	"context"
	"fmt"

	"github.com/formapi/formapi/internal/model"
)

// Offline stands in for a store whose client could not be built at all,
// for example because the connection string does not parse. It always
// reports StateDisconnected so the service keeps answering health checks.
type Offline struct {
	info  Info
	cause error
}

// NewOffline returns an Offline store that fails every call with cause.
func NewOffline(info Info, cause error) *Offline {
	return &Offline{info: info, cause: cause}
}

func (o *Offline) err() error {
	return fmt.Errorf("%w: %v", ErrUnavailable, o.cause)
}

// ReadyState always reports StateDisconnected.
func (o *Offline) ReadyState() State { return StateDisconnected }

func (o *Offline) Ping(ctx context.Context) error { return o.err() }

func (o *Offline) Info() Info { return o.info }

func (o *Offline) Close(ctx context.Context) error { return nil }

func (o *Offline) Insert(ctx context.Context, f *model.Form) (*model.Form, error) {
	return nil, o.err()
}

func (o *Offline) FindAll(ctx context.Context) ([]*model.Form, error) {
	return nil, o.err()
}

func (o *Offline) FindByID(ctx context.Context, id string) (*model.Form, error) {
	return nil, o.err()
}

func (o *Offline) UpdateByID(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error) {
	return nil, o.err()
}

func (o *Offline) DeleteByID(ctx context.Context, id string) (*model.Form, error) {
	return nil, o.err()
}
