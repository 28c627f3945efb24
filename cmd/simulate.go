package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/emsim/app"
	"github.com/kilianp07/emsim/config"
	"github.com/kilianp07/emsim/infra/logger"
	"github.com/kilianp07/emsim/pkg/export"
)

var simulateStrategy string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one dispatch strategy and export the results",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateStrategy, "strategy", "s", "", "strategy name (defaults to the configured one)")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
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
			logger.New("simulate-command").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	name := simulateStrategy
	if name == "" {
		name = cfg.Simulation.Strategy
	}

	out, err := svc.Simulate(ctx, name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	ledgerPath := filepath.Join(cfg.Output.Dir, name+"_ledger.csv")
	reportPath := filepath.Join(cfg.Output.Dir, name+"_report.json")

	lf, err := os.Create(ledgerPath)
	if err != nil {
		return err
	}
	defer lf.Close()
	if err := export.WriteLedgerCSV(lf, out.Ledger); err != nil {
		return err
	}

	rf, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	defer rf.Close()
	if err := export.WriteReportJSON(rf, out.Report); err != nil {
		return err
	}

	fmt.Printf("strategy %s: %d hours, total cost %.2f\n", name, out.Ledger.Hours(), out.Ledger.TotalCost())
	fmt.Printf("battery: SOH %.2f%%, %.3f cycles, %.2f kWh throughput\n",
		out.Battery.StateOfHealth, out.Battery.Cycles, out.Battery.ThroughputKWh)
	fmt.Printf("wrote %s and %s\n", ledgerPath, reportPath)
	return nil
}
