package extractors

import "strings"

// Page labels produced for national ID scans.
const (
	LabelFront = "FRONT"
	LabelBack  = "BACK"
	LabelBoth  = "BOTH"
)

// PagePair indexes the front and back page of one card. A page holding both
// sides is paired with itself.
type PagePair struct {
	Front int
	Back  int
}

// PairPages groups labelled pages into cards. Every BOTH page is its own card.
// Each FRONT, in page order, takes the nearest unused BACK by index distance,
// the lower index winning ties. Unmatched pages are dropped.
func PairPages(labels []string) []PagePair {
	var pairs []PagePair
	var fronts, backs []int
	for i, l := range labels {
		switch strings.ToUpper(strings.TrimSpace(l)) {
		case LabelBoth:
			pairs = append(pairs, PagePair{Front: i, Back: i})
		case LabelFront:
			fronts = append(fronts, i)
		case LabelBack:
			backs = append(backs, i)
		}
	}

	for _, f := range fronts {
		if len(backs) == 0 {
			break
		}
		best := 0
		for j := 1; j < len(backs); j++ {
			if distance(backs[j], f) < distance(backs[best], f) {
				best = j
			}
		}
		pairs = append(pairs, PagePair{Front: f, Back: backs[best]})
		backs = append(backs[:best], backs[best+1:]...)
	}
	return pairs
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
