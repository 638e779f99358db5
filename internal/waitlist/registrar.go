package waitlist

import (
	"context"
	"errors"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Counter is implemented by inserters that can report their size.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Registrar is the actor that owns the inserter. Requests are handled one at
// a time, so the store never sees concurrent writes from this process.
type Registrar struct {
	store  Inserter
	joined int
}

var _ actor.Actor = (*Registrar)(nil)

func NewRegistrar(store Inserter) *Registrar {
	return &Registrar{store: store}
}

func (r *Registrar) PreStart(ctx *actor.Context) error {
	return nil
}

func (r *Registrar) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("waitlist registrar started")

	case *structpb.Struct:
		switch kindOf(msg) {
		case kindJoin:
			r.join(ctx, msg)
		case kindCount:
			r.count(ctx)
		default:
			ctx.Unhandled()
		}

	default:
		ctx.Unhandled()
	}
}

func (r *Registrar) join(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	req, err := parseJoinRequest(msg)
	if err != nil {
		ctx.Unhandled()
		return
	}
	entry, err := r.store.Insert(ctx.Context(), req.Email, req.UseCase)
	switch {
	case errors.Is(err, ErrDuplicate):
		ctx.Response(newJoinReply(codeDuplicate, ""))
	case err != nil:
		ctx.Logger().Errorf("waitlist insert failed: %v", err)
		ctx.Response(withError(newJoinReply(codeFailed, ""), err))
	default:
		r.joined++
		ctx.Response(newJoinReply(codeOK, entry.ID))
	}
}

func (r *Registrar) count(ctx *actor.ReceiveContext) {
	c, ok := r.store.(Counter)
	if !ok {
		ctx.Response(withError(newCountReply(codeFailed, 0), errors.New("store cannot count")))
		return
	}
	n, err := c.Count(ctx.Context())
	if err != nil {
		ctx.Logger().Errorf("waitlist count failed: %v", err)
		ctx.Response(withError(newCountReply(codeFailed, 0), err))
		return
	}
	ctx.Response(newCountReply(codeOK, n))
}

func (r *Registrar) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("waitlist registrar stopped after %d signups", r.joined)
	return nil
}
