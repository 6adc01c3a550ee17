package filterexpr

import (
	"reflect"
	"testing"
)

var entryOrder = OrderSchema{
	Fields:      map[string]struct{}{"english": {}, "japanese": {}, "index": {}},
	FallbackKey: "index",
}

func TestParseOrderBy(t *testing.T) {
	cases := []struct {
		raw  string
		want []OrderKey
	}{
		{"", nil},
		{"english", []OrderKey{{Field: "english"}, {Field: "index"}}},
		{"english DESC", []OrderKey{{Field: "english", Desc: true}, {Field: "index"}}},
		{"japanese asc, index desc", []OrderKey{{Field: "japanese"}, {Field: "index", Desc: true}}},
		{"index desc", []OrderKey{{Field: "index", Desc: true}}},
	}
	for _, c := range cases {
		got, err := ParseOrderBy(c.raw, entryOrder)
		if err != nil {
			t.Fatalf("ParseOrderBy(%q) returned error: %v", c.raw, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseOrderBy(%q) = %+v, want %+v", c.raw, got, c.want)
		}
	}
}

func TestParseOrderBy_Errors(t *testing.T) {
	for _, raw := range []string{
		"example",
		"english sideways",
		"english asc extra",
		"english, english",
		"english, japanese, index",
	} {
		if _, err := ParseOrderBy(raw, entryOrder); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
