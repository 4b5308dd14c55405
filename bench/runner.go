package bench

import (
	"fmt"
	"time"
)

// Cooldown is the pause between consecutive measurement runs.
var Cooldown = 3 * time.Second

// RunMultiple executes runFn N times, checks steady-state, returns median.
// runFn receives the run index (0-based) and returns stats for that run.
// The first failing run stops the sequence.
func RunMultiple(runs int, label string, runFn func(run int) (BenchStats, error)) (BenchStats, error) {
	if runs <= 1 {
		return runFn(0)
	}

	fmt.Printf("\n╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║  %d-RUN BENCHMARK: %-38s║\n", runs, label)
	fmt.Printf("║  Methodology: median of %d runs, steady-state verified    ║\n", runs)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")

	allRuns := make([]BenchStats, 0, runs)

	for i := 0; i < runs; i++ {
		fmt.Printf("\n── Run %d/%d ──\n", i+1, runs)
		stats, err := runFn(i)
		if err != nil {
			return stats, fmt.Errorf("run %d/%d: %w", i+1, runs, err)
		}
		allRuns = append(allRuns, stats)

		fmt.Printf("  Run %d: QPS=%.1f  p50=%s  p95=%s  errors=%d\n",
			i+1, stats.QPS,
			FmtDur(stats.LatencyP50),
			FmtDur(stats.LatencyP95),
			stats.Errors)

		if i < runs-1 && Cooldown > 0 {
			fmt.Printf("  Cooling down (%s)...", Cooldown)
			time.Sleep(Cooldown)
			fmt.Println(" done")
		}
	}

	steady, maxDev := SteadyState(allRuns, 0.05)
	fmt.Printf("\n── Steady-State Check ──\n")
	fmt.Printf("  Max QPS deviation: %.1f%%\n", maxDev*100)
	if steady {
		fmt.Println("  ✅ PASSED (within ±5%)")
	} else {
		fmt.Printf("  ⚠️  FAILED (%.1f%% > 5%%) — results still reported as median\n", maxDev*100)
	}

	summary := append([]BenchStats(nil), allRuns...)
	median := MedianStats(allRuns)
	median.Label = fmt.Sprintf("%s (median of %d runs)", label, runs)

	fmt.Printf("\n╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║  ALL RUNS SUMMARY                                        ║\n")
	fmt.Printf("╠═════╦══════════╦══════════╦══════════╦═══════════════════╣\n")
	fmt.Printf("║ Run ║   QPS    ║   p50    ║   p95    ║ Errors            ║\n")
	fmt.Printf("╠═════╬══════════╬══════════╬══════════╬═══════════════════╣\n")
	for i, r := range summary {
		marker := "  "
		if r.LatencyP50 == median.LatencyP50 && r.QPS == median.QPS {
			marker = "→ "
		}
		fmt.Printf("║ %s%d  ║ %8.1f ║ %8s ║ %8s ║ %-17d ║\n",
			marker, i+1, r.QPS, FmtDur(r.LatencyP50), FmtDur(r.LatencyP95), r.Errors)
	}
	fmt.Printf("╚═════╩══════════╩══════════╩══════════╩═══════════════════╝\n")
	fmt.Println("  → = median (reported)")

	return median, nil
}
