package main

import (
	"fmt"
	"io"

	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/validation"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [%s] %s\n", kindOrLevel(e), e.Message)
			if e.SpecPath != "" && e.ActualValue != nil {
				fmt.Fprintf(w, "    -> %s = %v\n", e.SpecPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Fprintf(w, "    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, wr := range r.Warnings {
			fmt.Fprintf(w, "  [%s] %s\n", kindOrLevel(wr), wr.Message)
			if wr.Expected != "" {
				fmt.Fprintf(w, "    expected: %s\n", wr.Expected)
			}
			for _, s := range wr.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func kindOrLevel(r validation.Result) string {
	if r.Kind != "" {
		return string(r.Kind)
	}
	return string(r.Level)
}

func printCostReport(w io.Writer, p *plan.Plan) {
	m := p.Materials
	if m == nil {
		fmt.Fprintln(w, "No materials estimate available.")
		return
	}

	fmt.Fprintln(w, "Bill of Materials")
	fmt.Fprintln(w, "=================")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-16s %12s %6s %12s %12s\n", "Item", "Quantity", "Unit", "Unit cost", "Total")
	fmt.Fprintf(w, "%-16s %12s %6s %12s %12s\n",
		"----------------", "------------", "------", "------------", "------------")
	for _, it := range m.Items {
		fmt.Fprintf(w, "%-16s %12.2f %6s %12s %12s\n",
			it.Item, it.Quantity, it.Unit, formatMoney(it.UnitCost), formatMoney(it.Total))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "-------")
	fmt.Fprintf(w, "  Zones:              %d\n", len(p.ZoneAreas))
	fmt.Fprintf(w, "  Pipe length:        %.1f m\n", m.Summary.PipeLengthM)
	fmt.Fprintf(w, "  Trench volume:      %.2f m3\n", m.Summary.TrenchVolume)
	fmt.Fprintf(w, "  Total:              %s %s\n", formatMoney(m.Summary.Total), m.Currency)
	fmt.Fprintf(w, "  Per m2 irrigated:   %s %s\n", formatMoney(m.Summary.PerM2Irrigated), m.Currency)
}

func formatMoney(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 10_000 {
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return fmt.Sprintf("%.2f", v)
}
