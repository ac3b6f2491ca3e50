package directory

import (
	"testing"

	"github.com/citizen-signals/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func plovdivDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := New([]models.Organization{
		{ID: 1, Name: "Национална агенция"},
		{ID: 2, Name: "Областна администрация Пловдив", Oblast: strPtr("Пловдив")},
		{ID: 3, Name: "Община Пловдив", Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив")},
		{ID: 4, Name: "Район Западен", Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив"), Rayon: strPtr("Западен")},
	})
	if err != nil {
		t.Fatalf("build directory: %v", err)
	}
	return dir
}

func ids(orgs []models.Organization) []int {
	out := make([]int, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, o.ID)
	}
	return out
}

func sameIDs(a []int, b ...int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterHierarchyLevels(t *testing.T) {
	dir := plovdivDirectory(t)

	got := ids(Filter(dir, models.LocationQuery{Oblast: strPtr("Пловдив")}))
	if !sameIDs(got, 1, 2) {
		t.Fatalf("oblast query: expected [1 2], got %v", got)
	}

	got = ids(Filter(dir, models.LocationQuery{
		Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив"),
	}))
	if !sameIDs(got, 1, 2, 3) {
		t.Fatalf("grad query: expected [1 2 3], got %v", got)
	}

	got = ids(Filter(dir, models.LocationQuery{
		Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив"), Rayon: strPtr("Западен"),
	}))
	if !sameIDs(got, 1, 2, 3, 4) {
		t.Fatalf("rayon query: expected [1 2 3 4], got %v", got)
	}
}

func TestFilterEmptyQueryReturnsOnlyNationalAndOblast(t *testing.T) {
	dir := plovdivDirectory(t)
	got := ids(Filter(dir, models.LocationQuery{}))
	if !sameIDs(got, 1, 2) {
		t.Fatalf("empty query: expected [1 2], got %v", got)
	}
}

func TestFilterExcludesTooSpecific(t *testing.T) {
	dir := plovdivDirectory(t)
	got := ids(Filter(dir, models.LocationQuery{Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив")}))
	for _, id := range got {
		if id == 3 || id == 4 {
			t.Fatalf("grad/rayon-level org %d must not appear for an obshtina-level query, got %v", id, got)
		}
	}
}

func TestFilterOblastMismatch(t *testing.T) {
	dir := plovdivDirectory(t)
	got := ids(Filter(dir, models.LocationQuery{Oblast: strPtr("Варна")}))
	if !sameIDs(got, 1) {
		t.Fatalf("mismatching oblast: expected only national org, got %v", got)
	}
}

func TestFilterCaseAndWhitespaceInsensitive(t *testing.T) {
	dir := plovdivDirectory(t)
	got := ids(Filter(dir, models.LocationQuery{Oblast: strPtr("  ПЛОВДИВ ")}))
	if !sameIDs(got, 1, 2) {
		t.Fatalf("folded oblast query: expected [1 2], got %v", got)
	}
}

func TestFilterMultiValueCoverage(t *testing.T) {
	dir, err := New([]models.Organization{
		{ID: 10, Name: "Двойно покритие", Obshtina: strPtr("A;B")},
	})
	if err != nil {
		t.Fatalf("build directory: %v", err)
	}

	for _, q := range []string{"a", "b", "A", "B"} {
		got := Filter(dir, models.LocationQuery{Obshtina: strPtr(q)})
		if len(got) != 1 {
			t.Fatalf("obshtina=%q: expected coverage, got %v", q, ids(got))
		}
	}
	got := Filter(dir, models.LocationQuery{Obshtina: strPtr("c")})
	if len(got) != 0 {
		t.Fatalf("obshtina=c: expected no match, got %v", ids(got))
	}
}

func TestFilterIsPureAndOrderStable(t *testing.T) {
	dir := plovdivDirectory(t)
	q := models.LocationQuery{Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив")}

	first := ids(Filter(dir, q))
	second := ids(Filter(dir, q))
	if len(first) != len(second) {
		t.Fatalf("filter not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("filter order unstable: %v vs %v", first, second)
		}
	}
}

func TestMatchesCommaSeparatedAlternatives(t *testing.T) {
	if !Matches("софия", strPtr("Пловдив, София")) {
		t.Fatalf("expected comma-separated alternative to match")
	}
	if Matches("варна", strPtr("Пловдив, София")) {
		t.Fatalf("expected non-listed value to not match")
	}
	if !Matches("каквото и да е", nil) {
		t.Fatalf("nil org field must cover everything")
	}
}
