package vectorstore

import (
	"reflect"
	"testing"
)

func TestBuildWhereNoCriteria(t *testing.T) {
	if w := buildWhere("", "", nil); w != nil {
		t.Fatalf("expected nil filter, got %v", w)
	}
}

func TestBuildWhereSingleCriterionUnwrapped(t *testing.T) {
	w := buildWhere("Oncology", "", nil)
	want := map[string]any{"topic": "Oncology"}
	if !reflect.DeepEqual(w, want) {
		t.Fatalf("expected bare predicate, got %v", w)
	}
	if _, wrapped := w["$and"]; wrapped {
		t.Fatal("single criterion must not be wrapped in $and")
	}
}

func TestBuildWhereYearRange(t *testing.T) {
	w := buildWhere("", "", &YearRange{Min: 2015, Max: 2020})
	want := map[string]any{"year": map[string]any{"$gte": 2015, "$lte": 2020}}
	if !reflect.DeepEqual(w, want) {
		t.Fatalf("year filter: %v", w)
	}
}

func TestBuildWhereMultipleCriteriaConjoined(t *testing.T) {
	w := buildWhere("Oncology", "Review", &YearRange{Min: 1900, Max: 2020})
	clauses, ok := w["$and"].([]map[string]any)
	if !ok {
		t.Fatalf("expected $and conjunction, got %v", w)
	}
	if len(clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(clauses))
	}
	if !reflect.DeepEqual(clauses[0], map[string]any{"topic": "Oncology"}) {
		t.Fatalf("first clause: %v", clauses[0])
	}
	if !reflect.DeepEqual(clauses[1], map[string]any{"paper_type": "Review"}) {
		t.Fatalf("second clause: %v", clauses[1])
	}
}

func TestChunkIDSanitizesTitle(t *testing.T) {
	id := chunkID("Statins / CV Outcomes", 3)
	if id != "Statins___CV_Outcomes_3" {
		t.Fatalf("chunk id: %q", id)
	}
}
