//go:build js && wasm

// Command wasm exposes the calculation engine to a JavaScript host. Build with
// GOOS=js GOARCH=wasm and load alongside wasm_exec.js.
package main

import (
	"syscall/js"

	"dealforge-calc/internal/adapter/binding"
)

var adapter = binding.NewAdapter(binding.DefaultRegistry(), 1)

func main() {
	js.Global().Set("dealforgeCalculateRental", js.FuncOf(calculateRental))
	js.Global().Set("dealforgeCalculate", js.FuncOf(calculate))
	js.Global().Set("dealforgeDealTypes", js.FuncOf(dealTypes))
	select {}
}

// dealforgeCalculateRental(payload: string): string
func calculateRental(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return argumentError("dealforgeCalculateRental expects (payload: string)")
	}
	return binding.HandleRequest(args[0].String())
}

// dealforgeCalculate(dealType: string, payload: string): string
func calculate(_ js.Value, args []js.Value) any {
	if len(args) < 2 || args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return argumentError("dealforgeCalculate expects (dealType: string, payload: string)")
	}
	env, err := adapter.Handle(args[0].String(), []byte(args[1].String()))
	if err != nil {
		return argumentError(err.Error())
	}
	return binding.Encode(env)
}

func dealTypes(_ js.Value, _ []js.Value) any {
	names := adapter.DealTypes()
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}

// argumentError reports a host calling mistake in the same envelope shape
// the engine uses for bad payloads.
func argumentError(msg string) string {
	return binding.Encode(binding.Envelope{Error: &binding.ErrorBody{Kind: binding.KindDecode, Message: msg}})
}
