// Package geo expands user-supplied cities and states into broader search
// areas and builds the query phrasings used against the business source.
package geo

import "strings"

// DefaultArea is used when no city was supplied at all.
const DefaultArea = "United States"

// Expand converts a city or state name into a list of search areas. Known
// metros and states map to curated suburb lists; anything else gets a generic
// compass fanout. An empty input yields the whole-country default.
func Expand(city string) []string {
	city = strings.TrimSpace(city)
	if city == "" {
		return []string{DefaultArea}
	}
	key := strings.ToLower(city)
	if areas, ok := metroAreas[key]; ok {
		return append([]string(nil), areas...)
	}
	if areas, ok := stateAreas[key]; ok {
		return append([]string(nil), areas...)
	}
	return []string{
		city,
		"North " + city,
		"South " + city,
		"East " + city,
		"West " + city,
		city + " Downtown",
		city + " Suburbs",
	}
}

// ExpandAll flattens Expand over a list of cities, preserving order and
// dropping duplicate areas.
func ExpandAll(cities []string) []string {
	if len(cities) == 0 {
		return []string{DefaultArea}
	}
	var out []string
	seen := map[string]bool{}
	for _, city := range cities {
		for _, area := range Expand(city) {
			lower := strings.ToLower(area)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			out = append(out, area)
		}
	}
	if len(out) == 0 {
		return []string{DefaultArea}
	}
	return out
}

// Phrasings returns the three query spellings tried per area.
func Phrasings(niche, area string) []string {
	return []string{
		niche + " in " + area,
		niche + " near " + area,
		area + " " + niche,
	}
}
