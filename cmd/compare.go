package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/emsim/app"
	"github.com/kilianp07/emsim/config"
	"github.com/kilianp07/emsim/infra/logger"
	"github.com/kilianp07/emsim/pkg/export"
)

var compareStrategies []string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several strategies on the same scenario and rank them",
	RunE:  compare,
}

func init() {
	compareCmd.Flags().StringSliceVarP(&compareStrategies, "strategies", "s", nil, "strategy names (defaults to all)")
	rootCmd.AddCommand(compareCmd)
}

func compare(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("compare-command").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	results, err := svc.Compare(ctx, compareStrategies)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return results[names[i]].TotalCost() < results[names[j]].TotalCost()
	})

	fmt.Println("rank  strategy          mode    total cost")
	for i, n := range names {
		led := results[n]
		fmt.Printf("%4d  %-16s  %-6s  %10.2f\n", i+1, n, led.Mode, led.TotalCost())
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(cfg.Output.Dir, "comparison.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteComparisonCSV(f, results); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
