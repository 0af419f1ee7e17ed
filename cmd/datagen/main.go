package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mockpay/paygen/internal/export"
	"github.com/mockpay/paygen/internal/generator"
	"github.com/mockpay/paygen/internal/service"
)

func main() {
	defaults := generator.DefaultParams()
	var (
		count       = flag.Int("count", 10, "number of transactions to generate")
		txType      = flag.String("type", "", "pin every transaction to this type (payment, refund, subscription, dispute, chargeback)")
		status      = flag.String("status", "", "pin every transaction to this status")
		minAmount   = flag.Float64("min-amount", defaults.MinAmount, "minimum transaction amount")
		maxAmount   = flag.Float64("max-amount", defaults.MaxAmount, "maximum transaction amount")
		currency    = flag.String("currency", defaults.Currency, "ISO currency code")
		daysBack    = flag.Int("days-back", defaults.DaysBack, "spread timestamps over this many days before now")
		seed        = flag.Int64("seed", 0, "random seed for deterministic generation (0 picks one)")
		format      = flag.String("format", "json", "output format: json or csv")
		output      = flag.String("output", "", "file to write; defaults to stdout")
		writeStdout = flag.Bool("stdout", false, "force output to stdout even when -output is set")
	)
	flag.Parse()

	if err := service.ValidateGenerateParams(service.GenerateParams{
		Count:     *count,
		Type:      *txType,
		Status:    *status,
		MinAmount: *minAmount,
		MaxAmount: *maxAmount,
		Currency:  *currency,
		DaysBack:  *daysBack,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid parameters: %v\n", err)
		os.Exit(1)
	}

	gen := generator.New(generator.Config{Seed: *seed})
	batch := gen.Batch(*count, generator.Params{
		Type:      *txType,
		Status:    *status,
		MinAmount: *minAmount,
		MaxAmount: *maxAmount,
		Currency:  *currency,
		DaysBack:  *daysBack,
	})

	var body []byte
	var err error
	switch *format {
	case "csv":
		body, err = export.CSV(batch)
	case "json":
		body, err = export.JSON(batch)
	default:
		fmt.Fprintf(os.Stderr, "unsupported format %q\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "serialization failed: %v\n", err)
		os.Exit(1)
	}

	if *output == "" || *writeStdout {
		if _, err := os.Stdout.Write(body); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*output, body, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Generated %d transactions into %s\n", len(batch), *output)
}
