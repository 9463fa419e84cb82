package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/txlens/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		customers         = flag.Int("customers", cfg.NumCustomers, "number of customers to generate")
		transactions      = flag.Int("transactions", cfg.NumTransactions, "number of logical transactions to generate")
		p2pChance         = flag.Float64("p2p-chance", cfg.P2PChance, "probability that a transaction is a P2P transfer")
		returnChance      = flag.Float64("return-chance", cfg.ReturnChance, "probability that a settled transaction is later returned")
		deviceShareChance = flag.Float64("device-share-chance", cfg.DeviceShareChance, "probability of reusing an existing device ID")
		seed              = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir         = flag.String("output-dir", "data", "directory to write transactions.json")
		writeStdout       = flag.Bool("stdout", false, "write the feed to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumCustomers:      *customers,
		NumTransactions:   *transactions,
		P2PChance:         clampProbability(*p2pChance),
		ReturnChance:      clampProbability(*returnChance),
		DeviceShareChance: clampProbability(*deviceShareChance),
		Seed:              *seed,
		Start:             cfg.Start,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := generator.Encode(os.Stdout, dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Generated %d records into %s\n", len(dataset.Records), *outputDir)
}

func clampProbability(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
