package bench

import (
	"fmt"
	"sort"
	"time"
)

// Fairness compares the per-worker p50 latencies of one measurement.
type Fairness struct {
	Fastest  time.Duration
	Median   time.Duration
	Slowest  time.Duration
	Ratio    float64 // slowest / fastest
	Slowest5 []WorkerLatency
}

type WorkerLatency struct {
	Worker int
	P50    time.Duration
}

// ComputeFairness ranks workers by p50. Workers without a successful probe
// are left out.
func ComputeFairness(perWorker [][]QueryResult, totalDuration time.Duration) Fairness {
	var ranking []WorkerLatency
	for i, results := range perWorker {
		s := ComputeStats("", results, totalDuration)
		if s.Total == s.Errors {
			continue
		}
		ranking = append(ranking, WorkerLatency{Worker: i, P50: s.LatencyP50})
	}
	if len(ranking) == 0 {
		return Fairness{}
	}
	sort.Slice(ranking, func(i, j int) bool { return ranking[i].P50 > ranking[j].P50 })

	f := Fairness{
		Slowest: ranking[0].P50,
		Median:  ranking[len(ranking)/2].P50,
		Fastest: ranking[len(ranking)-1].P50,
	}
	if f.Fastest > 0 {
		f.Ratio = float64(f.Slowest) / float64(f.Fastest)
	}
	f.Slowest5 = ranking[:min(5, len(ranking))]
	return f
}

func PrintFairness(f Fairness) {
	fmt.Println()
	fmt.Println("╔═════════════════════════════════════════════════════════════╗")
	fmt.Println("║  WORKER FAIRNESS                                           ║")
	fmt.Println("╠═════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Fastest worker p50:  %-37s║\n", FmtDur(f.Fastest))
	fmt.Printf("║  Median worker p50:   %-37s║\n", FmtDur(f.Median))
	fmt.Printf("║  Slowest worker p50:  %-37s║\n", FmtDur(f.Slowest))
	fmt.Printf("║  Fairness ratio:      %-37s║\n", fmt.Sprintf("%.1fx (slowest/fastest)", f.Ratio))
	fmt.Println("╠═════════════════════════════════════════════════════════════╣")
	for i, w := range f.Slowest5 {
		fmt.Printf("║  #%d  worker %-13d  p50: %-23s║\n", i+1, w.Worker, FmtDur(w.P50))
	}
	fmt.Println("╠═════════════════════════════════════════════════════════════╣")

	if f.Ratio < 3.0 {
		fmt.Println("║  ✅ FAIR — all workers within 3x of each other              ║")
	} else if f.Ratio < 5.0 {
		fmt.Println("║  ⚠️  MODERATE — some workers slower than others              ║")
	} else {
		fmt.Println("║  ❌ UNFAIR — significant latency spread between workers      ║")
	}
	fmt.Println("╚═════════════════════════════════════════════════════════════╝")
}
