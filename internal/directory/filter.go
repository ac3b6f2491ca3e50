package directory

import (
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

// Filter returns the organizations administratively responsible for the
// query, preserving directory order. Each organization is judged
// independently, level by level:
//
//   - oblast: filters only when both sides specify one;
//   - obshtina, grad, rayon: an organization more specific than the query is
//     excluded ("too specific"), an organization less specific survives, and
//     when both sides specify the level the values must match.
//
// The result never contains an organization scoped strictly deeper than the
// deepest level the query specifies.
func Filter(dir *Directory, q models.LocationQuery) []models.Organization {
	filtered := make([]models.Organization, 0, dir.Len())

	for _, org := range dir.Organizations() {
		if org.Oblast != nil && q.Oblast != nil {
			if !Matches(*q.Oblast, org.Oblast) {
				continue
			}
		}
		if !levelOK(q.Obshtina, org.Obshtina) {
			continue
		}
		if !levelOK(q.Grad, org.Grad) {
			continue
		}
		if !levelOK(q.Rayon, org.Rayon) {
			continue
		}
		filtered = append(filtered, org)
	}
	return filtered
}

func levelOK(query *string, org *string) bool {
	if query == nil {
		return org == nil
	}
	if org == nil {
		return true
	}
	return Matches(*query, org)
}

// Matches reports whether a query value matches an organization's location
// field. A nil field covers everything. A field containing ';' or ',' lists
// alternatives and the query must equal one of them, case/trim-folded.
func Matches(query string, orgField *string) bool {
	if orgField == nil {
		return true
	}
	field := *orgField
	if strings.ContainsAny(field, ";,") {
		for _, sep := range []string{";", ","} {
			if !strings.Contains(field, sep) {
				continue
			}
			for _, alt := range strings.Split(field, sep) {
				if Normalize(query) == Normalize(alt) {
					return true
				}
			}
			return false
		}
	}
	return Normalize(query) == Normalize(field)
}
