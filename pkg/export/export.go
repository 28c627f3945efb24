// Package export writes simulation results to CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/emsim/core/kpi"
	"github.com/kilianp07/emsim/core/sim"
)

var ledgerHeader = []string{
	"hour", "day", "hour_of_day", "solar_kw", "load_kw", "net_load_kw", "price",
	"grid_buy_kw", "grid_sell_kw", "battery_charge_kw", "battery_discharge_kw",
	"battery_soc_kwh", "cost", "cumulative_cost", "cumulative_import", "cumulative_export",
}

// WriteLedgerCSV writes the ledger to w in CSV format.
func WriteLedgerCSV(w io.Writer, led *sim.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range led.Records {
		rec := []string{
			strconv.Itoa(r.Hour),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.HourOfDay),
			formatFloat(r.SolarKW),
			formatFloat(r.LoadKW),
			formatFloat(r.NetLoadKW),
			formatFloat(r.Price),
			formatFloat(r.GridBuyKW),
			formatFloat(r.GridSellKW),
			formatFloat(r.BatteryChargeKW),
			formatFloat(r.BatteryDischargeKW),
			formatFloat(r.BatterySOCKWh),
			formatFloat(r.Cost),
			formatFloat(r.CumulativeCost),
			formatFloat(r.CumulativeImport),
			formatFloat(r.CumulativeExport),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLedgerJSON writes the ledger to w in JSON format.
func WriteLedgerJSON(w io.Writer, led *sim.Ledger) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(led)
}

// WriteReportJSON writes a KPI report to w in JSON format.
func WriteReportJSON(w io.Writer, rpt kpi.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}

// WriteComparisonCSV writes per-strategy totals to w, sorted by strategy
// name for stable output.
func WriteComparisonCSV(w io.Writer, results map[string]*sim.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"strategy", "mode", "hours", "total_cost", "total_import", "total_export"}); err != nil {
		return err
	}
	names := make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		led := results[n]
		var imp, exp float64
		if hours := led.Hours(); hours > 0 {
			imp = led.Records[hours-1].CumulativeImport
			exp = led.Records[hours-1].CumulativeExport
		}
		rec := []string{
			n,
			led.Mode,
			strconv.Itoa(led.Hours()),
			formatFloat(led.TotalCost()),
			formatFloat(imp),
			formatFloat(exp),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
