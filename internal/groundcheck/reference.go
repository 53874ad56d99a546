package groundcheck

import "fmt"

// DefaultForemanCodes are the foremen every seeded division starts with.
var DefaultForemanCodes = []string{"A", "B", "C"}

// DefaultReference returns the initial reference set: divisions 1-3, each
// with foremen A-C. Ids are stable so a device seeded offline and a freshly
// initialized server agree on them.
func DefaultReference() ([]Division, []Foreman) {
	var divisions []Division
	var foremen []Foreman
	for i := 1; i <= 3; i++ {
		div := Division{
			ID:   fmt.Sprintf("div-%d", i),
			Code: fmt.Sprintf("%d", i),
			Name: fmt.Sprintf("Divisi %d", i),
		}
		divisions = append(divisions, div)
		for _, code := range DefaultForemanCodes {
			foremen = append(foremen, Foreman{
				ID:         fmt.Sprintf("fm-%d-%s", i, code),
				Code:       code,
				Name:       fmt.Sprintf("Kemandoran %s - %s", code, div.Name),
				DivisionID: div.ID,
			})
		}
	}
	return divisions, foremen
}
