// Package dataset reads and writes code-metric tables and produces synthetic
// training and production-like data sets.
package dataset

import (
	"math/rand/v2"

	"github.com/Veraticus/codeadvisor/internal/model"
)

// ClassTypeColumn is the code-unit category carried by production-like data.
const ClassTypeColumn = "class_type"

// metricProfile holds the mean and standard deviation of each schema feature.
type metricProfile [9][2]float64

var (
	optimalProfile = metricProfile{
		{200, 50}, {150, 30}, {5, 2}, {8, 2}, {2, 1}, {20, 5}, {5, 2}, {4, 1}, {0.25, 0.1},
	}
	suboptimalProfile = metricProfile{
		{400, 100}, {300, 80}, {15, 5}, {20, 5}, {4, 2}, {40, 10}, {12, 3}, {8, 2}, {0.6, 0.15},
	}
)

// Generator draws synthetic code-metric rows from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator; the same seed yields the same rows.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(uint64(seed), 0xda3e39cb94b95bdb))}
}

// Optimal draws n labeled rows from the optimal profile.
func (g *Generator) Optimal(n int) []model.LabeledExample {
	return g.draw(n, optimalProfile, model.Optimal)
}

// Suboptimal draws n labeled rows from the suboptimal profile.
func (g *Generator) Suboptimal(n int) []model.LabeledExample {
	return g.draw(n, suboptimalProfile, model.Suboptimal)
}

// Balanced draws total/2 rows of each class, shuffles them and cleans every row.
func (g *Generator) Balanced(total int) []model.LabeledExample {
	perClass := total / 2
	examples := append(g.Optimal(perClass), g.Suboptimal(perClass)...)
	g.rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
	return examples
}

// draw samples normal values per feature; integer metrics are truncated toward zero
// before the row is cleaned.
func (g *Generator) draw(n int, profile metricProfile, label int) []model.LabeledExample {
	out := make([]model.LabeledExample, n)
	values := make([]float64, len(profile))
	for i := range out {
		for f, p := range profile {
			values[f] = p[0] + p[1]*g.rng.NormFloat64()
		}
		out[i] = model.LabeledExample{
			FeatureRow: model.FeatureRowFromValues(values).Clean(),
			IsOptimal:  label,
		}
	}
	return out
}

// intRange is a half-open [lo, hi) range of integers.
type intRange [2]int

// unitProfile bounds the metrics of one kind of code unit.
type unitProfile struct {
	name      string
	loc       intRange
	effective intRange
	methods   intRange
	cc        intRange
	depth     intRange
	branches  intRange
	cbo       intRange
	deps      intRange
	lcom      [2]float64
}

var unitProfiles = []unitProfile{
	{name: "Controller", loc: intRange{100, 300}, effective: intRange{80, 250}, methods: intRange{5, 15}, cc: intRange{1, 10},
		depth: intRange{1, 3}, branches: intRange{10, 30}, cbo: intRange{3, 8}, deps: intRange{2, 6}, lcom: [2]float64{0.2, 0.5}},
	{name: "Service", loc: intRange{200, 500}, effective: intRange{150, 400}, methods: intRange{10, 20}, cc: intRange{5, 25},
		depth: intRange{1, 4}, branches: intRange{20, 50}, cbo: intRange{5, 12}, deps: intRange{3, 8}, lcom: [2]float64{0.3, 0.7}},
	{name: "Repository", loc: intRange{50, 150}, effective: intRange{40, 120}, methods: intRange{3, 8}, cc: intRange{1, 5},
		depth: intRange{1, 2}, branches: intRange{5, 15}, cbo: intRange{2, 5}, deps: intRange{1, 4}, lcom: [2]float64{0.1, 0.4}},
	{name: "Model", loc: intRange{30, 200}, effective: intRange{25, 150}, methods: intRange{2, 10}, cc: intRange{1, 3},
		depth: intRange{0, 2}, branches: intRange{0, 5}, cbo: intRange{1, 4}, deps: intRange{0, 3}, lcom: [2]float64{0.1, 0.3}},
	{name: "Util", loc: intRange{100, 400}, effective: intRange{80, 300}, methods: intRange{5, 15}, cc: intRange{3, 15},
		depth: intRange{0, 2}, branches: intRange{10, 40}, cbo: intRange{2, 7}, deps: intRange{1, 5}, lcom: [2]float64{0.2, 0.6}},
}

// Production draws n unlabeled rows resembling real code units of mixed kinds.
// The returned table carries the unit kind in the ClassTypeColumn text column.
func (g *Generator) Production(n int) *model.Table {
	rows := make([]model.FeatureRow, n)
	kinds := make([]string, n)
	for i := range rows {
		p := unitProfiles[g.rng.IntN(len(unitProfiles))]
		row := model.FeatureRow{
			LinesOfCode:            g.intIn(p.loc),
			EffectiveLines:         g.intIn(p.effective),
			NumberOfMethods:        g.intIn(p.methods),
			CyclomaticComplexity:   g.intIn(p.cc),
			InheritanceDepth:       g.intIn(p.depth),
			NumberOfBranches:       g.intIn(p.branches),
			CouplingBetweenObjects: g.intIn(p.cbo),
			ExternalDependencies:   g.intIn(p.deps),
			LackOfCohesion:         p.lcom[0] + g.rng.Float64()*(p.lcom[1]-p.lcom[0]),
		}
		row.EffectiveLines = min(row.EffectiveLines, row.LinesOfCode)
		rows[i] = row
		kinds[i] = p.name
	}

	table := model.NewFeatureTable(rows)
	table.Text = map[string][]string{ClassTypeColumn: kinds}
	return table
}

func (g *Generator) intIn(r intRange) int {
	return r[0] + g.rng.IntN(r[1]-r[0])
}
