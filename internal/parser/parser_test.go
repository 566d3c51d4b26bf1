package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alan-2022/alanc/internal/scanner"
	"github.com/alan-2022/alanc/internal/source"
)

func mustParse(t *testing.T, src string) *Result {
	t.Helper()

	r := source.New([]byte(src))
	sc := scanner.New(r)

	res, err := Parse(sc)
	require.NoError(t, err)

	return res
}

func mustFail(t *testing.T, src string) error {
	t.Helper()

	r := source.New([]byte(src))
	sc := scanner.New(r)

	_, err := Parse(sc)
	require.Error(t, err)

	return err
}

func TestRelaxProgram(t *testing.T) {
	res := mustParse(t, `source P begin relax end`)

	require.Equal(t, "P", res.ClassName)
	require.Contains(t, string(res.Jasmin), ".class public P")
}

func TestArithmeticAndPrint(t *testing.T) {
	res := mustParse(t, `source P begin integer x; x := 2 + 3 * 4; put x end`)

	out := string(res.Jasmin)
	require.Contains(t, out, "imul")
	require.Contains(t, out, "iadd")
	require.Contains(t, out, "istore")
	require.Contains(t, out, "invokevirtual java/io/PrintStream/print(I)V")
}

func TestFunctionCallAndReturn(t *testing.T) {
	res := mustParse(t, `
		source P
		function f(integer a) to integer
		begin
			leave a + 1
		end
		begin
			integer y;
			y := f(41);
			put y
		end`)

	out := string(res.Jasmin)
	require.Contains(t, out, "public static f(I)I")
	require.Contains(t, out, "invokestatic P/f(I)I")
}

func TestBooleanAssignmentTypeErrorIsRejected(t *testing.T) {
	err := mustFail(t, `source P begin boolean b; b := 1 end`)
	require.Contains(t, err.Error(), "incompatible types (expected boolean, found integer)")
}

func TestNestedCommentsDoNotAffectParse(t *testing.T) {
	res := mustParse(t, `source P begin { outer { inner } comment } relax end`)
	require.Contains(t, string(res.Jasmin), ".class public P")
}

func TestIfElsifElse(t *testing.T) {
	res := mustParse(t, `
		source P
		begin
			integer x;
			x := 5;
			if x = 1 then
				put "one"
			elsif x = 5 then
				put "five"
			else
				put "other"
			end
		end`)

	out := string(res.Jasmin)
	require.True(t, strings.Contains(out, "if_icmpeq"))
	require.True(t, strings.Contains(out, "goto"))
}

func TestWhileLoop(t *testing.T) {
	res := mustParse(t, `
		source P
		begin
			integer i;
			i := 0;
			while i < 10 do
				i := i + 1
			end
		end`)

	require.Contains(t, string(res.Jasmin), "if_icmplt")
}

func TestArrayAllocationAndAccess(t *testing.T) {
	res := mustParse(t, `
		source P
		begin
			integer array a;
			a := array 10;
			a[0] := 42;
			put a[0]
		end`)

	out := string(res.Jasmin)
	require.Contains(t, out, "newarray int")
	require.Contains(t, out, "iastore")
	require.Contains(t, out, "iaload")
}

func TestCallWrongArityIsRejected(t *testing.T) {
	err := mustFail(t, `
		source P
		function f(integer a) to integer
		begin
			leave a
		end
		begin
			integer y;
			y := f(1, 2)
		end`)

	require.Error(t, err)
}

func TestUnknownIdentifierIsRejected(t *testing.T) {
	err := mustFail(t, `source P begin put undeclared end`)
	require.Contains(t, err.Error(), "not declared")
}

func TestProcedureCannotBeUsedInExpression(t *testing.T) {
	err := mustFail(t, `
		source P
		function f()
		begin
			relax
		end
		begin
			integer y;
			y := f()
		end`)

	require.Error(t, err)
}

func TestLeaveWithValueOutsideFunctionIsRejected(t *testing.T) {
	err := mustFail(t, `source P begin leave 1 end`)
	require.Error(t, err)
}

func TestMissingLeaveInFunctionIsRejected(t *testing.T) {
	err := mustFail(t, `
		source P
		function f(integer a) to integer
		begin
			relax
		end
		begin
			relax
		end`)

	require.Error(t, err)
	require.Contains(t, err.Error(), "must leave a value")
}
