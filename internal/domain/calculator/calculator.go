// Package calculator describes a deal-type calculator family and the
// registry the adapters dispatch through.
//
// Every family follows the same decode, validate, calculate pipeline. Only
// the formulas and the input schema differ between deal types.
package calculator

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnsupportedDealType = errors.New("unsupported deal type")

// Family is the capability set a deal type implements. I is the raw input
// record, V the validated form, R the results.
type Family[I, V, R any] interface {
	DealType() string
	Validate(in I) (V, error)
	Calculate(v V) R
}

// Outcome is the type-erased result of one evaluation. Exactly one of Result
// or Err is set.
type Outcome struct {
	Inputs any
	Result any
	Err    error
}

// Evaluator runs the whole pipeline for a single payload.
type Evaluator func(payload []byte) Outcome

// Adapt turns a typed family into an Evaluator using a strict JSON decoder.
func Adapt[I, V, R any](f Family[I, V, R]) Evaluator {
	return func(payload []byte) Outcome {
		var in I
		if err := DecodeStrict(payload, &in); err != nil {
			return Outcome{Err: err}
		}
		v, err := f.Validate(in)
		if err != nil {
			return Outcome{Inputs: in, Err: err}
		}
		return Outcome{Inputs: in, Result: f.Calculate(v)}
	}
}

// Registry maps deal types to evaluators. It is filled at startup and only
// read afterwards.
type Registry struct {
	evaluators map[string]Evaluator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[string]Evaluator)}
}

// Register binds a deal type to its evaluator. Registering the same deal type
// twice is a wiring bug and panics.
func (r *Registry) Register(dealType string, e Evaluator) {
	if _, dup := r.evaluators[dealType]; dup {
		panic(fmt.Sprintf("calculator: deal type %q registered twice", dealType))
	}
	r.evaluators[dealType] = e
}

// Lookup returns the evaluator for dealType or wraps ErrUnsupportedDealType.
func (r *Registry) Lookup(dealType string) (Evaluator, error) {
	e, ok := r.evaluators[dealType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDealType, dealType)
	}
	return e, nil
}

// DealTypes lists the registered deal types in sorted order.
func (r *Registry) DealTypes() []string {
	out := make([]string, 0, len(r.evaluators))
	for k := range r.evaluators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
