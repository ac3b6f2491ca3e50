package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

// Directory is the process-wide organization table. Loaded once at startup
// and read-only afterwards, so it is safe for concurrent readers.
type Directory struct {
	orgs []models.Organization
	byID map[int]models.Organization
}

func New(orgs []models.Organization) (*Directory, error) {
	byID := make(map[int]models.Organization, len(orgs))
	for _, org := range orgs {
		if _, ok := byID[org.ID]; ok {
			return nil, fmt.Errorf("duplicate organization id %d", org.ID)
		}
		byID[org.ID] = org
	}
	return &Directory{orgs: orgs, byID: byID}, nil
}

// Organizations returns the directory rows in load order.
func (d *Directory) Organizations() []models.Organization {
	return d.orgs
}

func (d *Directory) Len() int {
	return len(d.orgs)
}

func (d *Directory) ByID(id int) (models.Organization, bool) {
	org, ok := d.byID[id]
	return org, ok
}

func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses organization rows from CSV. Location columns keep their export
// headers (Област, Община, Град/село, Район); blank cells become nil. Rows
// without an id are skipped.
func Load(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := headerIndex(headers)

	var orgs []models.Organization
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		idStr := getFieldAny(rec, index, "0", "id", "org_id")
		if idStr == "" {
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid organization id %q: %w", idStr, err)
		}

		orgs = append(orgs, models.Organization{
			ID:                   id,
			Name:                 getFieldAny(rec, index, "org_name", "name"),
			Oblast:               optField(rec, index, "област", "oblast"),
			Obshtina:             optField(rec, index, "община", "obshtina"),
			Grad:                 optField(rec, index, "град/село", "grad"),
			Rayon:                optField(rec, index, "район", "rayon"),
			SpecialTerritoryType: optField(rec, index, "special_territory_type"),
			SpecialTerritoryName: optField(rec, index, "special_territory_name"),
		})
	}
	return New(orgs)
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func optField(rec []string, idx map[string]int, names ...string) *string {
	v := getFieldAny(rec, idx, names...)
	if v == "" {
		return nil
	}
	return &v
}
