// Package binding is the host-facing boundary of the calculation engine. It
// turns a serialized request into a serialized envelope and converts every
// input-derived failure into data.
package binding

import (
	"context"
	"encoding/json"
	"errors"

	"dealforge-calc/internal/domain/calculator"
	"dealforge-calc/internal/domain/rental"

	"golang.org/x/sync/errgroup"
)

const (
	KindDecode     = "DecodeError"
	KindValidation = "ValidationError"
)

type Envelope struct {
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// OK reports whether the envelope carries a result.
func (e Envelope) OK() bool { return e.Error == nil }

type Adapter struct {
	registry    *calculator.Registry
	concurrency int
}

// NewAdapter wires an adapter over the given registry. concurrency bounds
// HandleBatch; values below 1 mean one payload at a time.
func NewAdapter(reg *calculator.Registry, concurrency int) *Adapter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Adapter{registry: reg, concurrency: concurrency}
}

// DefaultRegistry holds every calculator family the engine ships.
func DefaultRegistry() *calculator.Registry {
	reg := calculator.NewRegistry()
	reg.Register(rental.DealType, calculator.Adapt[rental.RentalInputs, rental.ValidatedInputs, rental.RentalResults](rental.Family{}))
	return reg
}

var defaultAdapter = NewAdapter(DefaultRegistry(), 1)

// HandleRequest evaluates one rental payload and returns the encoded
// envelope. It returns a value for every input.
func HandleRequest(payload string) string {
	env, _ := defaultAdapter.Handle(rental.DealType, []byte(payload))
	return Encode(env)
}

// Handle evaluates one payload for dealType. The only error is
// calculator.ErrUnsupportedDealType; input problems come back inside the
// envelope.
func (a *Adapter) Handle(dealType string, payload []byte) (Envelope, error) {
	eval, err := a.registry.Lookup(dealType)
	if err != nil {
		return Envelope{}, err
	}
	return ToEnvelope(eval(payload)), nil
}

// HandleBatch evaluates payloads concurrently and keeps their order. It fails
// only when dealType is unknown or ctx is done.
func (a *Adapter) HandleBatch(ctx context.Context, dealType string, payloads [][]byte) ([]Envelope, error) {
	eval, err := a.registry.Lookup(dealType)
	if err != nil {
		return nil, err
	}
	out := make([]Envelope, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range payloads {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ToEnvelope(eval(p))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) DealTypes() []string { return a.registry.DealTypes() }

// ToEnvelope maps an evaluation outcome onto the wire shape.
func ToEnvelope(o calculator.Outcome) Envelope {
	if o.Err == nil {
		return Envelope{Result: o.Result}
	}
	var de *calculator.DecodeError
	var ve *rental.ValidationError
	switch {
	case errors.As(o.Err, &de):
		return Envelope{Error: &ErrorBody{Kind: KindDecode, Message: de.Message}}
	case errors.As(o.Err, &ve):
		return Envelope{Error: &ErrorBody{Kind: KindValidation, Field: ve.Field, Reason: ve.Reason}}
	}
	return Envelope{Error: &ErrorBody{Kind: KindValidation, Reason: o.Err.Error()}}
}

// Encode serializes an envelope. Results hold only finite numbers, so
// marshalling cannot fail for anything the engine produces.
func Encode(env Envelope) string {
	b, err := json.Marshal(env)
	if err != nil {
		b, _ = json.Marshal(Envelope{Error: &ErrorBody{Kind: KindDecode, Message: err.Error()}})
	}
	return string(b)
}
