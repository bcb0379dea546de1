package store

import (
	"context"
	"errors"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/geocoder89/usershub/internal/store"

// Observed wraps a Store so that every call is timed into Prometheus and
// recorded as a span.
type Observed struct {
	next   Store
	prom   *observability.Prom
	tracer trace.Tracer
}

func NewObserved(next Store, prom *observability.Prom) *Observed {
	return &Observed{
		next:   next,
		prom:   prom,
		tracer: otel.Tracer(tracerName),
	}
}

func (o *Observed) run(ctx context.Context, op, id string, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if id != "" {
		span.SetAttributes(attribute.String("user.id", id))
	}

	call := func() error { return fn(ctx) }

	var err error
	if o.prom != nil {
		err = o.prom.ObserveStore(op, call)
	} else {
		err = call()
	}

	if err != nil && !errors.Is(err, user.ErrNotFound) && !user.IsValidation(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
	}

	return err
}

func (o *Observed) List(ctx context.Context) ([]user.User, error) {
	var out []user.User
	err := o.run(ctx, "list", "", func(ctx context.Context) error {
		var err error
		out, err = o.next.List(ctx)
		return err
	})
	return out, err
}

func (o *Observed) Create(ctx context.Context, f user.Fields) (user.User, error) {
	var out user.User
	err := o.run(ctx, "create", "", func(ctx context.Context) error {
		var err error
		out, err = o.next.Create(ctx, f)
		return err
	})
	return out, err
}

func (o *Observed) Get(ctx context.Context, id string) (user.User, error) {
	var out user.User
	err := o.run(ctx, "get", id, func(ctx context.Context) error {
		var err error
		out, err = o.next.Get(ctx, id)
		return err
	})
	return out, err
}

func (o *Observed) Update(ctx context.Context, id string, f user.Fields) (user.User, error) {
	var out user.User
	err := o.run(ctx, "update", id, func(ctx context.Context) error {
		var err error
		out, err = o.next.Update(ctx, id, f)
		return err
	})
	return out, err
}

func (o *Observed) Delete(ctx context.Context, id string) error {
	return o.run(ctx, "delete", id, func(ctx context.Context) error {
		return o.next.Delete(ctx, id)
	})
}

func (o *Observed) Ping(ctx context.Context) error {
	return o.run(ctx, "ping", "", o.next.Ping)
}

func (o *Observed) Close(ctx context.Context) error {
	return o.next.Close(ctx)
}
