package bench

import (
	"fmt"
	"time"
)

// PrintHeader announces a benchmark and its workload.
func PrintHeader(title string, params BenchParams) {
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	fmt.Println("═══════════════════════════════════════════")
	if params.Duration > 0 {
		fmt.Printf("  Range: %d | Duration: %s | Concurrency: %d\n", params.Range, params.Duration, params.Concurrency)
	} else {
		fmt.Printf("  Range: %d | Queries: %d | Concurrency: %d\n", params.Range, params.Queries, params.Concurrency)
	}
	fmt.Printf("  Window: salary in [min, min+1000] | Temp database: %t\n\n", params.CreateTempDatabase)
}

// PrintStats renders one result box on stdout.
func PrintStats(s BenchStats) {
	fmt.Printf("\n┌─────────────────────────────────────────┐\n")
	fmt.Printf("│  %-39s│\n", s.Label)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Queries:      %-24d│\n", s.Total)
	fmt.Printf("│  Errors:       %-24d│\n", s.Errors)
	fmt.Printf("│  Rows/probe:   %-24.2f│\n", s.RowsPerProbe())
	fmt.Printf("│  Duration:     %-24s│\n", s.Duration.Round(time.Millisecond))
	fmt.Printf("│  QPS:          %-24.1f│\n", s.QPS)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Latency avg:  %-24s│\n", FmtDur(s.LatencyAvg))
	fmt.Printf("│  Latency min:  %-24s│\n", FmtDur(s.LatencyMin))
	fmt.Printf("│  Latency max:  %-24s│\n", FmtDur(s.LatencyMax))
	fmt.Printf("│  Latency p50:  %-24s│\n", FmtDur(s.LatencyP50))
	fmt.Printf("│  Latency p75:  %-24s│\n", FmtDur(s.LatencyP75))
	fmt.Printf("│  Latency p90:  %-24s│\n", FmtDur(s.LatencyP90))
	fmt.Printf("│  Latency p95:  %-24s│\n", FmtDur(s.LatencyP95))
	fmt.Printf("│  Latency p99:  %-24s│\n", FmtDur(s.LatencyP99))
	fmt.Printf("└─────────────────────────────────────────┘\n")
}

func FmtDur(d time.Duration) string {
	us := float64(d.Microseconds())
	if us < 1000 {
		return fmt.Sprintf("%.0fµs", us)
	}
	return fmt.Sprintf("%.2fms", us/1000)
}