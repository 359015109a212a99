package grammar

import (
	"sort"
	"strings"

	"github.com/dekarrin/rosed"
)

// StartSetTable renders, one row per rule/alternative, the START set used to
// pick that alternative during predictive parsing, as a bordered table.
func StartSetTable(g *Grammar) string {
	data := [][]string{{"rule", "alt", "START"}}

	for _, r := range g.rules {
		for i, alt := range r.Alternatives {
			set := Start(g, AltRef{Rule: r.Name, Alt: i})
			names := make([]string, 0, len(set))
			for _, k := range set.Elements() {
				names = append(names, k.Name)
			}
			sort.Strings(names)
			data = append(data, []string{r.Name, alt.String(), "{" + strings.Join(names, ", ") + "}"})
		}
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 100, rosed.Options{
			TableBorders: true,
		}).
		String()
}
