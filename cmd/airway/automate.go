package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/airway/internal/automation"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/storage"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, newLogger(os.Stderr, logEnabled), storage.New(runsDir))
	if err != nil {
		return describe(err)
	}

	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tCONFIG\tTICKS\tSATURATIONS\tOCCUPANCY\tFINAL\tSAVED")
	for i, r := range results {
		saved := "-"
		if r.RunID != "" {
			saved = r.RunID
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%.0f\t%.0f%%\t%s\t%s\n",
			i+1,
			r.Step.Name,
			describeConfig(r.Result.Config),
			r.Result.Metrics["ticks"],
			r.Result.Metrics["saturations"],
			r.Result.Occupancy*100,
			r.Result.Final,
			saved,
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.HeightSweep{
		Options:   opts,
		MinHeight: minHeight,
		MaxHeight: maxHeight,
		NumSteps:  steps,
		Duration:  duration,
		Seed:      seed,
	}, newLogger(os.Stderr, config.Merge(opts).Log))
	if err != nil {
		return describe(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HEIGHT\tCAPACITY\tTICKS\tSATURATIONS\tOCCUPANCY\tFINAL")
	for _, r := range results {
		fmt.Fprintf(w, "%dpx\t%d\t%d\t%d\t%.0f%%\t%s\n",
			r.Height, r.Capacity, r.Ticks, r.Saturations, r.Occupancy*100, r.Final)
	}
	return w.Flush()
}
