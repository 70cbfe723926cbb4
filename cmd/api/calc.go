package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"dealforge-calc/internal/adapter/binding"
	"dealforge-calc/internal/domain/rental"
	"dealforge-calc/pkg/money"

	"github.com/spf13/cobra"
)

const maxLineBytes = 1 << 20

var (
	calcFile        string
	calcRound       bool
	calcConcurrency int
)

var calcCmd = &cobra.Command{
	Use:   "calc [deal-type]",
	Short: "Evaluate payloads read one per line",
	Long: `Reads one JSON payload per line from stdin (or --file) and writes one
result envelope per line to stdout. Blank lines are skipped. The deal type
defaults to "rental".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dealType := rental.DealType
		if len(args) == 1 {
			dealType = args[0]
		}
		in := cmd.InOrStdin()
		if calcFile != "" {
			f, err := os.Open(calcFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		a := binding.NewAdapter(binding.DefaultRegistry(), calcConcurrency)
		return runCalc(cmd.Context(), a, dealType, in, cmd.OutOrStdout(), calcRound)
	},
}

func init() {
	calcCmd.Flags().StringVarP(&calcFile, "file", "f", "", "Read payloads from this file instead of stdin")
	calcCmd.Flags().BoolVar(&calcRound, "round", false, "Round result figures to cents for display")
	calcCmd.Flags().IntVar(&calcConcurrency, "concurrency", runtime.NumCPU(), "Payloads evaluated in parallel")
}

func runCalc(ctx context.Context, a *binding.Adapter, dealType string, in io.Reader, out io.Writer, round bool) error {
	payloads, err := readLines(in)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	envs, err := a.HandleBatch(ctx, dealType, payloads)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for _, env := range envs {
		if round && env.OK() {
			rounded, err := money.RoundFlat(env.Result)
			if err != nil {
				return err
			}
			env.Result = rounded
		}
		if _, err := fmt.Fprintln(w, binding.Encode(env)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readLines(in io.Reader) ([][]byte, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	var out [][]byte
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		out = append(out, bytes.Clone(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read payloads: %w", err)
	}
	return out, nil
}
