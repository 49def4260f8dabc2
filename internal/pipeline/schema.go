package pipeline

import "sort"

// IntersectSchema returns the labels present in every year's set, sorted by
// byte order. No years, or any year without labels, gives an empty schema.
func IntersectSchema(labelSets map[int]map[string]struct{}) []string {
	if len(labelSets) == 0 {
		return []string{}
	}

	var smallest map[string]struct{}
	for _, set := range labelSets {
		if smallest == nil || len(set) < len(smallest) {
			smallest = set
		}
	}

	out := []string{}
	for label := range smallest {
		inAll := true
		for _, set := range labelSets {
			if _, ok := set[label]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}
