package directory

import (
	"strings"
	"testing"
)

const sampleCSV = "0,org_name,Област,Община,Град/село,Район,special_territory_type,special_territory_name\n" +
	"1,Национална агенция,,,,,,\n" +
	"2,Областна администрация Пловдив,Пловдив,,,,,\n" +
	",без идентификатор,,,,,,\n" +
	"3, Община Пловдив ,Пловдив,Пловдив,Пловдив,,,\n"

func TestLoadParsesRows(t *testing.T) {
	dir, err := Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if dir.Len() != 3 {
		t.Fatalf("expected 3 organizations (blank-id row skipped), got %d", dir.Len())
	}

	org, ok := dir.ByID(1)
	if !ok {
		t.Fatalf("org 1 not found")
	}
	if org.Oblast != nil || org.Obshtina != nil || org.Grad != nil || org.Rayon != nil {
		t.Fatalf("blank location cells must load as nil, got %+v", org)
	}

	org, ok = dir.ByID(3)
	if !ok {
		t.Fatalf("org 3 not found")
	}
	if org.Name != "Община Пловдив" {
		t.Fatalf("expected trimmed name, got %q", org.Name)
	}
	if org.Grad == nil || *org.Grad != "Пловдив" {
		t.Fatalf("expected grad Пловдив, got %+v", org.Grad)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	csv := "0,org_name\n1,Първа\n1,Втора\n"
	if _, err := Load(strings.NewReader(csv)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadHandlesBOMHeader(t *testing.T) {
	csv := "\uFEFF0,org_name\n7,Агенция\n"
	dir, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := dir.ByID(7); !ok {
		t.Fatalf("expected org 7 after BOM-prefixed header")
	}
}

func TestLoadRejectsNonNumericID(t *testing.T) {
	csv := "0,org_name\nabc,Агенция\n"
	if _, err := Load(strings.NewReader(csv)); err == nil {
		t.Fatalf("expected invalid id error")
	}
}
