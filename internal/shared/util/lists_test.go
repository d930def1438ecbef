package util

import (
	"reflect"
	"testing"
)

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" Curly ", "frizz", "", "CURLY", "dryness"})
	want := []string{"curly", "dryness", "frizz"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestContainsIgnoresCase(t *testing.T) {
	if !Contains([]string{"Wavy", "curly"}, "wavy") {
		t.Fatalf("expected match")
	}
	if Contains([]string{"curly"}, "coily") {
		t.Fatalf("unexpected match")
	}
}
