package cache

import "delivery-zone-planner/internal/domain"

// uniqueKeys dedupes destinations by their storage key and returns the keys in
// input order plus a key->coordinates index for decoding results.
func uniqueKeys(destinations []domain.Coordinates) ([]string, map[string]domain.Coordinates) {
	keys := make([]string, 0, len(destinations))
	index := make(map[string]domain.Coordinates, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = d
		keys = append(keys, k)
	}
	return keys, index
}
