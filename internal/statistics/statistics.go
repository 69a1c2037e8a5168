// Package statistics summarises settled rounds for the history views.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/lox/minicasino/internal/games"
)

// Summary accumulates the results of a set of rounds.
type Summary struct {
	Rounds     int
	Wagered    int
	Paid       int
	Wins       int
	Pushes     int
	Losses     int
	BiggestWin int

	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Net result of every round, for median and percentiles
}

// Add incorporates one settled round.
func (s *Summary) Add(r games.Result) {
	net := r.Net()
	s.Rounds++
	s.Wagered += r.Wager
	s.Paid += r.Payout
	s.SumNet += float64(net)
	s.SumNet2 += float64(net) * float64(net)
	s.Values = append(s.Values, float64(net))

	switch {
	case net > 0:
		s.Wins++
		if net > s.BiggestWin {
			s.BiggestWin = net
		}
	case net == 0:
		s.Pushes++
	default:
		s.Losses++
	}
}

// Net is the chip change across every round.
func (s *Summary) Net() int {
	return s.Paid - s.Wagered
}

// Mean returns the average net chips per round
func (s *Summary) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of the per-round net
func (s *Summary) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
func (s *Summary) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Summary) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Summary) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// ReturnToPlayer is chips paid out per chip wagered.
func (s *Summary) ReturnToPlayer() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.Paid) / float64(s.Wagered)
}

// WinRate is the fraction of rounds that ended ahead.
func (s *Summary) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Median returns the median per-round net
func (s *Summary) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the per-round net at p (0.0 to 1.0), interpolating
// between neighbours.
func (s *Summary) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the accounting is consistent.
func (s *Summary) Validate() error {
	if s.Wins+s.Pushes+s.Losses != s.Rounds {
		return fmt.Errorf("outcome mismatch: %d wins + %d pushes + %d losses != %d rounds",
			s.Wins, s.Pushes, s.Losses, s.Rounds)
	}
	if math.Abs(s.SumNet-float64(s.Net())) > 1e-6 {
		return fmt.Errorf("ledger mismatch: summed net %.0f, paid-wagered %d", s.SumNet, s.Net())
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("recorded %d values for %d rounds", len(s.Values), s.Rounds)
	}
	return nil
}

// Report breaks rounds down by game.
type Report struct {
	Overall Summary
	ByGame  map[games.Kind]*Summary
}

// Build summarises results.
func Build(results []games.Result) *Report {
	r := &Report{ByGame: make(map[games.Kind]*Summary)}
	for _, res := range results {
		r.Overall.Add(res)
		s, ok := r.ByGame[res.Game]
		if !ok {
			s = &Summary{}
			r.ByGame[res.Game] = s
		}
		s.Add(res)
	}
	return r
}

// String renders the report as an aligned table in menu order.
func (r *Report) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "game\trounds\twagered\tpaid\tnet\twin%\tRTP\tbest\t")
	row := func(name string, s *Summary) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%+d\t%.0f%%\t%.2f\t%d\t\n",
			name, s.Rounds, s.Wagered, s.Paid, s.Net(), 100*s.WinRate(), s.ReturnToPlayer(), s.BiggestWin)
	}
	for _, k := range games.Kinds {
		if s, ok := r.ByGame[k]; ok {
			row(string(k), s)
		}
	}
	row("total", &r.Overall)
	_ = w.Flush()

	lo, hi := r.Overall.ConfidenceInterval95()
	fmt.Fprintf(&b, "Mean net per round %.1f (95%% CI %.1f to %.1f), median %.1f",
		r.Overall.Mean(), lo, hi, r.Overall.Median())
	return b.String()
}
