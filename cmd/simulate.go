package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"prizedraw/config"
	"prizedraw/draw"
	"prizedraw/models"
)

// PrizeTally compares one prize's observed draw frequency with its configured odds
type PrizeTally struct {
	Prize    models.PrizeEntry
	Expected float64
	Count    int
}

// Observed returns the empirical frequency of the prize
func (t PrizeTally) Observed(trials int) float64 {
	if trials == 0 {
		return 0
	}
	return float64(t.Count) / float64(trials)
}

// SimulationReport summarizes a batch of simulated spins
type SimulationReport struct {
	Trials           int
	Tallies          []PrizeTally
	ChiSquared       float64
	DegreesOfFreedom int

	// Expected bonus bits paid back per paid spin, before the spin cost
	BonusPerSpin float64
	SpinCost     int64
}

// Simulate draws trials prizes from table with rnd and tallies the outcomes
func Simulate(table *draw.Table, rnd draw.RandomSource, trials int, spinCost int64) SimulationReport {
	entries := table.Entries()
	index := make(map[string]int, len(entries))
	report := SimulationReport{
		Trials:   trials,
		Tallies:  make([]PrizeTally, len(entries)),
		SpinCost: spinCost,
	}

	for i, e := range entries {
		p, _ := table.Probability(e.ID)
		index[e.ID] = i
		report.Tallies[i] = PrizeTally{Prize: e, Expected: p}
		if e.Kind == models.PrizeKindBonus {
			report.BonusPerSpin += p * e.Value
		}
	}

	for i := 0; i < trials; i++ {
		report.Tallies[index[table.Draw(rnd).ID]].Count++
	}

	categories := 0
	for _, t := range report.Tallies {
		if t.Expected == 0 {
			continue
		}
		expected := t.Expected * float64(trials)
		report.ChiSquared += math.Pow(float64(t.Count)-expected, 2) / expected
		categories++
	}
	if categories > 1 {
		report.DegreesOfFreedom = categories - 1
	}

	return report
}

// Write prints the report as a table
func (r SimulationReport) Write(w io.Writer) {
	fmt.Fprintf(w, "=== Prize wheel simulation: %d spins ===\n\n", r.Trials)
	fmt.Fprintf(w, "%-16s %-9s %10s %10s %10s %9s\n", "PRIZE", "KIND", "EXPECTED", "OBSERVED", "COUNT", "DEVIATION")
	fmt.Fprintln(w, strings.Repeat("-", 69))

	for _, t := range r.Tallies {
		observed := t.Observed(r.Trials)
		fmt.Fprintf(w, "%-16s %-9s %9.4f%% %9.4f%% %10d %+8.4f%%\n",
			t.Prize.ID, t.Prize.Kind, t.Expected*100, observed*100, t.Count, (observed-t.Expected)*100)
	}

	fmt.Fprintf(w, "\nχ² = %.3f with %d degrees of freedom\n", r.ChiSquared, r.DegreesOfFreedom)
	fmt.Fprintf(w, "Bonus returned per paid spin: %.2f bits of %d bits cost (%.2f%% payback)\n",
		r.BonusPerSpin, r.SpinCost, r.Payback()*100)
}

// Payback is the share of the spin cost returned as bonus bits on average
func (r SimulationReport) Payback() float64 {
	if r.SpinCost <= 0 {
		return 0
	}
	return r.BonusPerSpin / float64(r.SpinCost)
}

// RunSimulation loads the configured prize table and prints a simulation report.
// A zero seed draws from the crypto source.
func RunSimulation(w io.Writer, tablePath string, trials int, seed uint64, spinCost int64) error {
	if trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", trials)
	}

	table, err := config.LoadPrizeTable(tablePath)
	if err != nil {
		return fmt.Errorf("failed to load prize table: %w", err)
	}

	rnd := draw.CryptoSource()
	if seed != 0 {
		rnd = draw.SeededSource(seed)
	}

	Simulate(table, rnd, trials, spinCost).Write(w)
	return nil
}
