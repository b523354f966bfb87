package fuzzy

import (
	"reflect"
	"testing"
)

func TestRatio(t *testing.T) {
	if got := Ratio("water", "water"); got != 1.0 {
		t.Fatalf("identical strings should score 1.0, got %v", got)
	}
	if got := Ratio("water", "xyzzy"); got != 0.0 {
		t.Fatalf("disjoint strings should score 0.0, got %v", got)
	}
	if Ratio("solar", "soler") != Ratio("soler", "solar") {
		t.Fatal("ratio should be symmetric")
	}
	if got := Ratio("", "water"); got != 0.0 {
		t.Fatalf("empty vs non-empty should score 0.0, got %v", got)
	}

	near := Ratio("cleanin", "cleaning")
	far := Ratio("cleanin", "solar")
	if near <= far {
		t.Fatalf("expected %v > %v", near, far)
	}
	if near < 0.8 {
		t.Fatalf("one-letter difference should clear the default cutoff, got %v", near)
	}
}

func TestSnapExactMember(t *testing.T) {
	pool := []string{"Solar Power", "Water Purification"}

	if got := Snap("solar power", pool, DefaultCutoff); got != "Solar Power" {
		t.Fatalf("case-insensitive exact member should snap to pool casing, got %q", got)
	}
	if got := Snap("Water Purification", pool, DefaultCutoff); got != "Water Purification" {
		t.Fatalf("exact member should be returned unchanged, got %q", got)
	}
}

func TestSnapNoNearMatch(t *testing.T) {
	pool := []string{"solar", "water"}

	got := Snap("woodworking", pool, DefaultCutoff)
	if got != "woodworking" {
		t.Fatalf("value with no near match must pass through unchanged, got %q", got)
	}
}

func TestSnapEmptyInputs(t *testing.T) {
	if got := Snap("", []string{"solar"}, DefaultCutoff); got != "" {
		t.Fatalf("empty value should stay empty, got %q", got)
	}
	if got := Snap("solar", nil, DefaultCutoff); got != "solar" {
		t.Fatalf("empty pool should pass the value through, got %q", got)
	}
}

func TestSnapNearMiss(t *testing.T) {
	pool := []string{"cleaning", "gardening"}

	if got := Snap("cleanin", pool, DefaultCutoff); got != "cleaning" {
		t.Fatalf("near miss should snap onto the pool, got %q", got)
	}
}

func TestSnapList(t *testing.T) {
	pool := []string{"water", "solar"}

	got := SnapList(
		[]string{"Water", "watre", "  ", "solar", "WATER", "wood"},
		pool,
		SnapOptions{Lower: true, Cutoff: 0.75, MaxItems: 3},
	)

	if len(got) > 3 {
		t.Fatalf("expected at most 3 items, got %v", got)
	}
	seen := map[string]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate entry %q in %v", v, got)
		}
		seen[v] = true
	}
	if got[0] != "water" {
		t.Fatalf("expected snapped lowercase water first, got %v", got)
	}
}

func TestSnapListTitleCase(t *testing.T) {
	got := SnapList([]string{"dog walking"}, nil, SnapOptions{TitleCase: true, MaxItems: 2})
	want := []string{"Dog Walking"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SnapList = %v, want %v", got, want)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("solar PANEL cleaning"); got != "Solar Panel Cleaning" {
		t.Fatalf("TitleCase = %q", got)
	}
}
