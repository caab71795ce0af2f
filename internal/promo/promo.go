// Package promo keeps the sandbox free promotion code provisioned exactly once
// per process.
//
// The memo starts empty, is set at most once to a pending operation and is
// never reset. The guarantee is per process: every replica of the server runs
// its own ensure call.
package promo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/stripe/stripe-go/v80"
)

// Ensurer creates the promotion code when it does not exist yet.
type Ensurer interface {
	EnsureFreePromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error)
}

// Once collapses concurrent and repeated ensure requests into a single call.
type Once struct {
	ensurer Ensurer
	code    string

	mu      sync.Mutex
	pending *operation
}

type operation struct {
	done  chan struct{}
	promo *stripe.PromotionCode
}

// NewOnce returns a memo for code. An empty code disables provisioning.
func NewOnce(ensurer Ensurer, code string) *Once {
	return &Once{ensurer: ensurer, code: code}
}

// Enabled reports whether a promotion code is configured.
func (o *Once) Enabled() bool {
	return o != nil && o.code != "" && o.ensurer != nil
}

// Ensure waits for the shared ensure operation, starting it on first use.
// Failures are logged and yield nil; they are remembered like successes.
// A cancelled ctx stops the wait but not the shared operation.
func (o *Once) Ensure(ctx context.Context) *stripe.PromotionCode {
	if !o.Enabled() {
		return nil
	}

	o.mu.Lock()
	op := o.pending
	if op == nil {
		op = &operation{done: make(chan struct{})}
		o.pending = op
		go o.run(context.WithoutCancel(ctx), op)
	}
	o.mu.Unlock()

	select {
	case <-op.done:
		return op.promo
	case <-ctx.Done():
		return nil
	}
}

func (o *Once) run(ctx context.Context, op *operation) {
	defer close(op.done)

	promo, err := o.ensurer.EnsureFreePromotionCode(ctx, o.code)
	if err != nil {
		slog.Error("failed to ensure free promo code", "error", err, "code", o.code)
		return
	}
	if promo != nil {
		slog.Info("free promo code ready", "code", o.code, "promotion_code_id", promo.ID)
	}
	op.promo = promo
}
