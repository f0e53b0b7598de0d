package classifier

import (
	"fmt"
	"sort"

	"NewsIntel/internal/domain"
)

// bootstrapTemplates expand a seed keyword into synthetic headlines. Higher
// keyword weights produce more examples, biasing the model toward the
// stronger indicators of each category.
var bootstrapTemplates = []string{
	"%s news update released",
	"latest %s developments announced",
	"%s sector shows growth",
	"new %s initiative announced by government",
	"%s market trends analysis",
	"analysis of %s impact on economy",
	"%s challenges and opportunities ahead",
	"%s investment opportunities expand",
	"breaking major %s update",
	"%s industry outlook positive",
	"%s reforms implemented",
	"experts discuss %s future",
	"new %s policy announced",
	"%s growth exceeds expectations",
	"%s sector faces challenges",
}

// BootstrapCorpus synthesizes labeled examples from the category taxonomy's
// weighted seed keywords. Used when the store holds no labeled articles yet,
// so a first model can be trained before any real data accumulates.
func BootstrapCorpus(taxonomy map[string]map[string]float64) []domain.LabeledExample {
	categories := make([]string, 0, len(taxonomy))
	for cat := range taxonomy {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var corpus []domain.LabeledExample
	for _, cat := range categories {
		keywords := make([]string, 0, len(taxonomy[cat]))
		for kw := range taxonomy[cat] {
			keywords = append(keywords, kw)
		}
		sort.Strings(keywords)

		for _, kw := range keywords {
			weight := taxonomy[cat][kw]
			examples := int(weight * 4)
			if examples < 4 {
				examples = 4
			}
			if examples > len(bootstrapTemplates) {
				examples = len(bootstrapTemplates)
			}
			for i := 0; i < examples; i++ {
				corpus = append(corpus, domain.LabeledExample{
					Text:     fmt.Sprintf(bootstrapTemplates[i], kw),
					Category: cat,
				})
			}
		}
	}
	return corpus
}
