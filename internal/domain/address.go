package domain

import "strings"

// AddressQuery builds the canonical address query for a location: the
// non-empty address fields joined with ", " in street, city, state, postcode
// order. The second return is false when the location has no usable address,
// in which case the caller must not attempt geocoding.
func AddressQuery(l Location) (string, bool) {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Street, l.City, l.State, l.Postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}
