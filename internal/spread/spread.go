// Package spread runs influence propagation models over a keyword graph and
// reports the keywords activated in each iteration.
package spread

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

// Graph is the view of a keyword graph needed by the propagation models.
type Graph interface {
	Keywords() []string
	Neighbors(keyword string) []string
	Degree(keyword string) int
}

// Model names.
const (
	ModelTipping = "tipping"
	ModelCascade = "cascade"
)

// ValidModels lists the supported propagation models.
var ValidModels = []string{ModelTipping, ModelCascade}

// Strategy selects how activation thresholds are derived.
type Strategy string

// Threshold strategies.
const (
	StrategyDegree    Strategy = "degree"     // 1/deg
	StrategyHalf      Strategy = "half"       // 0.5
	StrategyDegreeNeg Strategy = "degree-neg" // 1 - 1/deg
)

// ValidStrategies lists the supported threshold strategies.
var ValidStrategies = []Strategy{StrategyDegree, StrategyHalf, StrategyDegreeNeg}

var (
	ErrNoSeeds         = errors.New("no seed keyword is in the graph")
	ErrUnknownStrategy = errors.New("unknown threshold strategy")
	ErrUnknownModel    = errors.New("unknown propagation model")
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, v := range ValidStrategies {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrUnknownStrategy, s, ValidStrategies)
}

// threshold maps a degree onto an activation threshold for the strategy.
func (s Strategy) threshold(degree float64) float64 {
	switch s {
	case StrategyHalf:
		return 0.5
	case StrategyDegreeNeg:
		if degree == 0 {
			return 1
		}
		return 1 - 1/degree
	default:
		if degree == 0 {
			return 1
		}
		return 1 / degree
	}
}

// Influenced maps an iteration number to the keywords activated in that iteration.
// Iteration 0 holds the seeds.
type Influenced map[int][]string

// Seeds returns the iteration-0 keywords.
func (in Influenced) Seeds() []string {
	return in[0]
}

// Iterations returns the iteration numbers in ascending order.
func (in Influenced) Iterations() []int {
	its := make([]int, 0, len(in))
	for it := range in {
		its = append(its, it)
	}
	sort.Ints(its)
	return its
}

// Total returns the number of keywords summed over all iterations.
func (in Influenced) Total() int {
	n := 0
	for _, keys := range in {
		n += len(keys)
	}
	return n
}

// Union returns every influenced keyword once, sorted.
func (in Influenced) Union() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, it := range in.Iterations() {
		for _, k := range in[it] {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Label returns the display label of an iteration.
func Label(iteration int) string {
	return fmt.Sprintf("iteration %d", iteration)
}

// initialSeeds filters seeds down to keywords present in the graph.
func initialSeeds(g Graph, seeds []string) (map[string]int, []string, error) {
	status := make(map[string]int)
	for _, k := range g.Keywords() {
		status[k] = 0
	}

	var active []string
	for _, s := range seeds {
		if v, ok := status[s]; ok && v == 0 {
			status[s] = 1
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, nil, ErrNoSeeds
	}
	sort.Strings(active)
	return status, active, nil
}

// Tipping runs the linear threshold (tipping) model. In each step every inactive
// keyword becomes active when the fraction of its neighbours active in the
// previous step reaches its threshold. Propagation stops at the first step that
// activates nothing.
func Tipping(g Graph, seeds []string, strategy Strategy) (Influenced, error) {
	status, active, err := initialSeeds(g, seeds)
	if err != nil {
		return nil, err
	}

	keywords := g.Keywords()
	sort.Strings(keywords)

	thresholds := make(map[string]float64, len(keywords))
	for _, k := range keywords {
		thresholds[k] = strategy.threshold(float64(g.Degree(k)))
	}

	influenced := Influenced{0: active}
	for it := 1; ; it++ {
		var activated []string
		for _, u := range keywords {
			if status[u] == 1 {
				continue
			}
			neighbors := g.Neighbors(u)
			if len(neighbors) == 0 {
				continue
			}
			count := 0
			for _, v := range neighbors {
				if status[v] == 1 {
					count++
				}
			}
			if float64(count)/float64(len(neighbors)) >= thresholds[u] {
				activated = append(activated, u)
			}
		}
		if len(activated) == 0 {
			break
		}
		for _, u := range activated {
			status[u] = 1
		}
		influenced[it] = activated
	}

	return influenced, nil
}

// Cascade runs the independent cascade model. Every newly activated keyword gets
// a single chance to activate each inactive neighbour, succeeding with the
// edge threshold as probability, and is then retired.
func Cascade(g Graph, seeds []string, strategy Strategy, rng *rand.Rand) (Influenced, error) {
	status, active, err := initialSeeds(g, seeds)
	if err != nil {
		return nil, err
	}

	influenced := Influenced{0: active}
	frontier := active
	for it := 1; len(frontier) > 0; it++ {
		var activated []string
		for _, u := range frontier {
			neighbors := g.Neighbors(u)
			sort.Strings(neighbors)
			for _, v := range neighbors {
				if status[v] != 0 {
					continue
				}
				mean := float64(g.Degree(u)+g.Degree(v)) / 2
				if rng.Float64() <= strategy.threshold(mean) {
					status[v] = 1
					activated = append(activated, v)
				}
			}
			status[u] = 2
		}
		if len(activated) == 0 {
			break
		}
		sort.Strings(activated)
		influenced[it] = activated
		frontier = activated
	}

	return influenced, nil
}

// Run dispatches to the named model.
func Run(model string, g Graph, seeds []string, strategy Strategy, seed uint64) (Influenced, error) {
	switch model {
	case ModelTipping:
		return Tipping(g, seeds, strategy)
	case ModelCascade:
		rng := rand.New(rand.NewPCG(seed, seed))
		return Cascade(g, seeds, strategy, rng)
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownModel, model, ValidModels)
	}
}
