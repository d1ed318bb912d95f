package naming

import (
	"slices"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"MY_SNAKE_CASE", []string{"MY", "SNAKE", "CASE"}},
		{"_allo_ello", []string{"allo", "ello"}},
		{"IBufferMyBuffer", []string{"IBuffer", "My", "Buffer"}},
		{"IBuffer", []string{"IBuffer"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"parseHTTPRequest", []string{"parse", "HTTP", "Request"}},
		{"myField", []string{"my", "Field"}},
		{"m_value2", []string{"m", "value2"}},
		{"Http2Server", []string{"Http2", "Server"}},
		{"ABc", []string{"A", "Bc"}},
		{"IOStream", []string{"IO", "Stream"}},
		{"x", []string{"x"}},
		{"__", []string{"__"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Segment(tt.in).Segments()
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Segment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		in   string
		conv Convention
		want string
	}{
		{"MY_SNAKE_CASE", UpperCamel, "MySnakeCase"},
		{"_allo_ello", LowerCamel, "alloEllo"},
		{"_allo_ello", UnderscoreLowerCamel, "_alloEllo"},
		{"Width", UnderscoreLowerCamel, "_width"},
		{"buffer", InterfacePrefixUpperCamel, "IBuffer"},
		{"IBuffer", InterfacePrefixUpperCamel, "IBuffer"},
		{"IBufferMyBuffer", InterfacePrefixUpperCamel, "IBufferMyBuffer"},
		{"Item", InterfacePrefixUpperCamel, "IItem"},
		{"HTTPServer", UpperCamel, "HttpServer"},
		{"HTTPServer", LowerCamel, "httpServer"},
		{"get_value", UpperCamel, "GetValue"},
		{"IBuffer", LowerCamel, "iBuffer"},
		{"__", UpperCamel, "__"},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.conv.String(), func(t *testing.T) {
			if got := Normalize(tt.in, tt.conv); got != tt.want {
				t.Fatalf("Normalize(%q, %s) = %q, want %q", tt.in, tt.conv, got, tt.want)
			}
		})
	}
}

func TestPassThrough(t *testing.T) {
	for _, in := range []string{"@class", "café", `na\u0041me`, "名前"} {
		id := Segment(in)
		if !id.Verbatim() {
			t.Errorf("Segment(%q) should be verbatim", in)
		}
		for _, conv := range Conventions() {
			if got := Render(id, conv); got != in {
				t.Errorf("Render(%q, %s) = %q, want unchanged", in, conv, got)
			}
		}
	}
}

// idempotenceAlphabet covers lower and upper letters, the interface 'I',
// digits and separators.
const idempotenceAlphabet = "aAbIZ1_"

// identifiers returns every string over alphabet of length 1 to n.
func identifiers(alphabet string, n int) []string {
	out := []string{}
	level := []string{""}
	for range n {
		var next []string
		for _, prefix := range level {
			for i := 0; i < len(alphabet); i++ {
				next = append(next, prefix+alphabet[i:i+1])
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func checkIdempotent(t *testing.T, in string) {
	t.Helper()
	for _, conv := range Conventions() {
		once := Normalize(in, conv)
		if twice := Normalize(once, conv); once != twice {
			t.Errorf("%s: %q -> %q -> %q", conv, in, once, twice)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range identifiers(idempotenceAlphabet, 4) {
		checkIdempotent(t, in)
	}
	for _, in := range []string{
		"MY_SNAKE_CASE", "IBufferMyBuffer", "parseHTTPRequest", "XMLHttpRequest",
		"x_IBuffer", "HTTP2Server", "I_IBuffer", "a_b_c_Def", "_aI", "1I_B",
	} {
		checkIdempotent(t, in)
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, seed := range []string{"aZ", "_aI", "1I_B", "I_buffer", "IBufferMyBuffer", "x_a1", "XYZab"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		checkIdempotent(t, in)
	})
}

func TestRenderMergedWords(t *testing.T) {
	tests := []struct {
		in   string
		conv Convention
		want string
	}{
		{"aZ", UpperCamel, "Az"},
		{"aZ", InterfacePrefixUpperCamel, "IAz"},
		{"_aI", UpperCamel, "Ai"},
		{"1I_B", LowerCamel, "1Ib"},
		{"I_buffer", InterfacePrefixUpperCamel, "IBuffer"},
		{"I", InterfacePrefixUpperCamel, "I"},
		{"I2c", InterfacePrefixUpperCamel, "I2c"},
		{"Iabc", InterfacePrefixUpperCamel, "IIabc"},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.conv.String(), func(t *testing.T) {
			if got := Normalize(tt.in, tt.conv); got != tt.want {
				t.Fatalf("Normalize(%q, %s) = %q, want %q", tt.in, tt.conv, got, tt.want)
			}
		})
	}
}

func TestParseConvention(t *testing.T) {
	for _, conv := range Conventions() {
		got, err := ParseConvention(conv.String())
		if err != nil || got != conv {
			t.Errorf("ParseConvention(%q) = %v, %v", conv.String(), got, err)
		}
	}
	if got, err := ParseConvention("LOWERCAMEL"); err != nil || got != LowerCamel {
		t.Errorf("case-insensitive parse failed: %v, %v", got, err)
	}
	if _, err := ParseConvention("kebab"); err == nil {
		t.Error("expected error for unknown convention")
	}
}
