package source

import "testing"

func TestPeekAndAdvance(t *testing.T) {
	r := New([]byte("ab"))

	if r.Peek() != 'a' {
		t.Fatalf("Peek() = %q, want 'a'", r.Peek())
	}

	if got := r.Advance(); got != 'b' {
		t.Fatalf("Advance() = %q, want 'b'", got)
	}

	if got := r.Advance(); got != EOF {
		t.Fatalf("Advance() at end = %v, want EOF", got)
	}

	if got := r.Advance(); got != EOF {
		t.Fatalf("Advance() past end = %v, want sticky EOF", got)
	}
}

func TestEmptyInputIsImmediatelyEOF(t *testing.T) {
	r := New(nil)

	if r.Peek() != EOF {
		t.Fatalf("Peek() on empty input = %v, want EOF", r.Peek())
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	cases := []struct {
		name       string
		advances   int
		wantLine   int
		wantColumn int
	}{
		{"first char", 0, 1, 1},
		{"second char same line", 1, 1, 2},
		{"newline character itself", 2, 1, 3},
		{"first char of second line", 3, 2, 1},
		{"second char of second line", 4, 2, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New([]byte("ab\ncd"))
			for i := 0; i < tc.advances; i++ {
				r.Advance()
			}

			pos := r.Pos()
			if pos.Line != tc.wantLine || pos.Col != tc.wantColumn {
				t.Fatalf("Pos() = %d:%d, want %d:%d", pos.Line, pos.Col, tc.wantLine, tc.wantColumn)
			}
		})
	}
}
