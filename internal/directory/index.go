package directory

import (
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

// CityEntry is the location triple recorded for a known city name.
type CityEntry struct {
	Oblast   *string
	Obshtina *string
	Grad     *string
}

// Index maps normalized city names to their location triple and normalized
// rayon names to the canonical spelling. Derived from the directory once at
// startup; read-only afterwards.
type Index struct {
	cities map[string]CityEntry
	rayons map[string]string
}

// NewIndex scans the directory in load order, keeping the first organization
// seen per city and per rayon.
func NewIndex(dir *Directory) *Index {
	idx := &Index{
		cities: map[string]CityEntry{},
		rayons: map[string]string{},
	}
	for _, org := range dir.Organizations() {
		if org.Grad != nil && *org.Grad != "" {
			key := Normalize(*org.Grad)
			if _, ok := idx.cities[key]; !ok {
				idx.cities[key] = CityEntry{
					Oblast:   org.Oblast,
					Obshtina: org.Obshtina,
					Grad:     org.Grad,
				}
			}
		}
		if org.Rayon != nil && *org.Rayon != "" {
			key := Normalize(*org.Rayon)
			if _, ok := idx.rayons[key]; !ok {
				idx.rayons[key] = *org.Rayon
			}
		}
	}
	return idx
}

func (idx *Index) CityCount() int {
	return len(idx.cities)
}

func (idx *Index) RayonCount() int {
	return len(idx.rayons)
}

func (idx *Index) CityKeys() []string {
	keys := make([]string, 0, len(idx.cities))
	for k := range idx.cities {
		keys = append(keys, k)
	}
	return keys
}

func (idx *Index) RayonKeys() []string {
	keys := make([]string, 0, len(idx.rayons))
	for k := range idx.rayons {
		keys = append(keys, k)
	}
	return keys
}

// ExtractLocation scans at most the last 6 conversation turns, most recent
// first, for a known city mention. When a turn names a city, a rayon mention
// in the same turn refines the result; later turns are not consulted.
// Returns nil when no turn names a known city.
func (idx *Index) ExtractLocation(turns []models.ChatMessage) *models.LocationQuery {
	start := len(turns) - 6
	if start < 0 {
		start = 0
	}
	for i := len(turns) - 1; i >= start; i-- {
		content := strings.ToLower(turns[i].Content)

		for cityKey, entry := range idx.cities {
			if !strings.Contains(content, cityKey) {
				continue
			}
			result := &models.LocationQuery{
				Oblast:   copyString(entry.Oblast),
				Obshtina: copyString(entry.Obshtina),
				Grad:     copyString(entry.Grad),
			}
			for rayonKey, canonical := range idx.rayons {
				if strings.Contains(content, rayonKey) {
					r := canonical
					result.Rayon = &r
					return result
				}
			}
			return result
		}
	}
	return nil
}

// Normalize folds a location name for comparison: trimmed, lower-cased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
