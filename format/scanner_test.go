package format

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-printnf/errors"
)

func collect(t *testing.T, src string) ([]Token, error) {
	t.Helper()
	var toks []Token
	s := NewScanner(src)
	for s.Next() {
		toks = append(toks, s.Token())
	}
	return toks, s.Err()
}

func TestScanner_Tokens(t *testing.T) {
	toks, err := collect(t, "r = %b, %% done %{Color_RGBa}!")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	want := []struct {
		text string
		name string
		kind TokenKind
		verb Verb
		pos  int
	}{
		{"r = ", "", TokenText, 0, 0},
		{"%b", "", TokenSpec, VerbByte, 4},
		{", ", "", TokenText, 0, 6},
		{"%%", "", TokenPercent, 0, 8},
		{" done ", "", TokenText, 0, 10},
		{"%{Color_RGBa}", "Color_RGBa", TokenSpec, VerbStruct, 16},
		{"!", "", TokenText, 0, 29},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		got := toks[i]
		if got.Kind != w.kind || got.Text != w.text || got.Verb != w.verb || got.Name != w.name || got.Pos != w.pos {
			t.Errorf("token %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestScanner_LiteralOnly(t *testing.T) {
	specs, err := Specs("Hello, world!")
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 0 {
		t.Errorf("expected no specifiers, got %d", len(specs))
	}
}

func TestScanner_AllVerbs(t *testing.T) {
	specs, err := Specs("%s%b%u%i%d%f%F%e%E%c%{}%p")
	if err != nil {
		t.Fatal(err)
	}
	verbs := []Verb{VerbString, VerbByte, VerbUnsigned, VerbInt, VerbDecimal,
		VerbFloat, VerbFloatF, VerbExp, VerbExpE, VerbChar, VerbStruct, VerbPointer}
	if len(specs) != len(verbs) {
		t.Fatalf("got %d specs, want %d", len(specs), len(verbs))
	}
	for i, v := range verbs {
		if specs[i].Verb != v {
			t.Errorf("spec %d verb = %c, want %c", i, specs[i].Verb, v)
		}
	}
	if specs[10].Name != "" {
		t.Errorf("empty struct name = %q", specs[10].Name)
	}
}

func TestScanner_Errors(t *testing.T) {
	tests := []struct {
		target error
		name   string
		src    string
		specs  int
		pos    int
	}{
		{errors.ErrUnsupportedSpecifier, "unsupported", "%d then %q then %d", 1, 8},
		{errors.ErrUnsupportedSpecifier, "dangling percent", "100%", 0, 3},
		{errors.ErrUnterminatedStruct, "unterminated struct", "%{Foo", 0, 0},
		{errors.ErrUnterminatedStruct, "unterminated after spec", "%u %{Foo bar", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := collect(t, tt.src)
			if !stderrors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
			n := 0
			for _, tok := range toks {
				if tok.Kind == TokenSpec {
					n++
				}
			}
			if n != tt.specs {
				t.Errorf("specs before error = %d, want %d", n, tt.specs)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Pos != tt.pos {
				t.Errorf("error position = %+v, want %d", e, tt.pos)
			}
		})
	}
}

func TestScanner_StopsAfterError(t *testing.T) {
	s := NewScanner("%q%d")
	if s.Next() {
		t.Fatal("expected Next to fail on an unsupported specifier")
	}
	if s.Next() {
		t.Error("Next continued after error")
	}
	s.Reset("%d")
	if !s.Next() || s.Err() != nil {
		t.Errorf("Reset did not clear error: %v", s.Err())
	}
}

func TestVerb_Width(t *testing.T) {
	tests := []struct {
		verb Verb
		want int
	}{
		{VerbString, -1},
		{VerbByte, 1},
		{VerbChar, 1},
		{VerbUnsigned, 4},
		{VerbFloat, 4},
		{VerbStruct, 4},
		{VerbPointer, 4},
	}
	for _, tt := range tests {
		if got := tt.verb.Width(); got != tt.want {
			t.Errorf("%s.Width() = %d, want %d", tt.verb, got, tt.want)
		}
	}
}
