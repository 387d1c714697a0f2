package models

import "strings"

// GroupName identifies one of the four partitions of a ParsedDataset.
type GroupName string

const (
	GroupRegions        GroupName = "regions"
	GroupGeographical   GroupName = "geographical"
	GroupPopulation     GroupName = "population"
	GroupClassification GroupName = "classification"
)

// GroupOrder is the fixed whitelist priority: a category satisfying several
// whitelists lands in the first group of this list.
var GroupOrder = []GroupName{
	GroupRegions,
	GroupGeographical,
	GroupPopulation,
	GroupClassification,
}

// ParseGroupName accepts the canonical names plus the singular selector values
// used by the chart pages ("region").
func ParseGroupName(s string) (GroupName, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regions", "region":
		return GroupRegions, true
	case "geographical", "geo":
		return GroupGeographical, true
	case "population":
		return GroupPopulation, true
	case "classification":
		return GroupClassification, true
	}
	return "", false
}
