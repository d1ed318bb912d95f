package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("Cover() = %+v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover() across files = %+v, want %+v", got, a)
	}
}

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{Start: 0, End: 5}, Span{Start: 5, End: 10}, false},
		{"intersecting", Span{Start: 10, End: 20}, Span{Start: 15, End: 25}, true},
		{"nested", Span{Start: 10, End: 20}, Span{Start: 12, End: 13}, true},
		{"two empty at same offset", Span{Start: 4, End: 4}, Span{Start: 4, End: 4}, false},
		{"empty inside", Span{Start: 4, End: 4}, Span{Start: 0, End: 10}, true},
		{"empty at end", Span{Start: 10, End: 10}, Span{Start: 0, End: 10}, false},
		{"different files", Span{File: 1, Start: 0, End: 10}, Span{File: 2, Start: 0, End: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	outer := Span{File: 1, Start: 0, End: 10}
	if !outer.Contains(Span{File: 1, Start: 0, End: 10}) {
		t.Error("span should contain itself")
	}
	if outer.Contains(Span{File: 1, Start: 5, End: 11}) {
		t.Error("span should not contain a span reaching past its end")
	}
}
