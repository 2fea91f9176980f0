package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTypeMismatch,
				Path:   []string{"arg1"},
				Pos:    -1,
				Detail: "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "arg1", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRender,
				Kind:  KindOutOfBounds,
				Pos:   -1,
			},
			contains: []string{"[render]", "out_of_bounds"},
		},
		{
			name:     "position reported for scan errors",
			err:      UnsupportedSpecifier(PhaseScan, 7, 'q'),
			contains: []string{"[scan]", "unsupported_specifier", "(pos 7)", `"%q"`},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMemory,
				Kind:   KindAllocation,
				Pos:    -1,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[memory]", "allocation", "heap full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseCapture, KindInvalidInput, cause, "decode frame")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause in chain")
	}
}

func TestError_Is(t *testing.T) {
	err := UnterminatedStruct(PhaseScan, 3, "Foo")

	if !err.Is(&Error{Phase: PhaseScan, Kind: KindUnterminatedStruct}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseRender, Kind: KindUnterminatedStruct}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseScan, Kind: KindUnsupportedSpecifier}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrUnterminatedStruct) {
		t.Error("errors.Is should match kind-only sentinel")
	}
	if errors.Is(err, ErrUnsupportedSpecifier) {
		t.Error("errors.Is matched the wrong sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("arg2").
		Pos(14).
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 1 || err.Path[0] != "arg2" {
		t.Errorf("Path = %v, want [arg2]", err.Path)
	}
	if err.Pos != 14 {
		t.Errorf("Pos = %d, want 14", err.Pos)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestBuilder_DefaultPos(t *testing.T) {
	err := New(PhaseHost, KindCrash).Build()
	if err.Pos != -1 {
		t.Errorf("Pos = %d, want -1", err.Pos)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseEncode, 1024, 512)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("UnsupportedSpecifier dangling", func(t *testing.T) {
		err := UnsupportedSpecifier(PhaseScan, 5, 0)
		if !strings.Contains(err.Detail, "dangling") {
			t.Errorf("Detail = %v, want dangling message", err.Detail)
		}
	})

	t.Run("UnterminatedStruct", func(t *testing.T) {
		err := UnterminatedStruct(PhaseScan, 0, "Foo")
		if err.Value != "Foo" {
			t.Errorf("Value = %v, want Foo", err.Value)
		}
		if !strings.Contains(err.Detail, "missing closing brace") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseEncode, 2, 'u', "string")
		if len(err.Path) != 1 || err.Path[0] != "arg2" {
			t.Errorf("Path = %v, want [arg2]", err.Path)
		}
	})

	t.Run("ArgumentCount", func(t *testing.T) {
		err := ArgumentCount(PhaseEncode, 3, 1)
		if !errors.Is(err, ErrArgumentCount) {
			t.Error("expected ErrArgumentCount")
		}
	})

	t.Run("InsufficientCapacity", func(t *testing.T) {
		err := InsufficientCapacity(PhaseHost, 10, 4)
		if !errors.Is(err, ErrInsufficientCapacity) {
			t.Error("expected ErrInsufficientCapacity")
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, 10, 5)
		if err.Value != uint32(10) {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLayout, "struct", "Foo")
		if !strings.Contains(err.Error(), `struct "Foo" not found`) {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseLayout, "field", "x")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
	})

	t.Run("Crash", func(t *testing.T) {
		err := Crash("Out of Memory")
		if err.Phase != PhaseHost || !errors.Is(err, ErrCrash) {
			t.Errorf("unexpected crash error %v", err)
		}
	})

	t.Run("Reentrant", func(t *testing.T) {
		if !errors.Is(Reentrant(PhaseEncode), ErrReentrant) {
			t.Error("expected ErrReentrant")
		}
	})
}
