package symtab

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alan-2022/alanc/internal/valtype"
)

func TestInsertAndFindInSameScope(t *testing.T) {
	tab := New()

	off, ok := tab.InsertVar("x", valtype.Integer)
	require.True(t, ok)
	require.Equal(t, uint32(1), off)

	prop, ok := tab.Find("x")
	require.True(t, ok)
	require.Equal(t, valtype.Integer, prop.Type)
	require.Equal(t, uint32(1), prop.Offset)
}

func TestOffsetsIncreasePerScope(t *testing.T) {
	tab := New()

	a, _ := tab.InsertVar("a", valtype.Integer)
	b, _ := tab.InsertVar("b", valtype.Boolean)
	require.Equal(t, uint32(1), a)
	require.Equal(t, uint32(2), b)
	require.Equal(t, uint32(3), tab.CurrentLocalsWidth())
}

func TestDuplicateInsertInSameScopeFails(t *testing.T) {
	tab := New()

	_, ok := tab.InsertVar("x", valtype.Integer)
	require.True(t, ok)

	_, ok = tab.InsertVar("x", valtype.Integer)
	require.False(t, ok)
}

func TestUndeclaredNameIsNotFound(t *testing.T) {
	tab := New()

	_, ok := tab.Find("nope")
	require.False(t, ok)
}

func TestSubroutineScopeShadowsGlobalVariable(t *testing.T) {
	tab := New()
	tab.InsertVar("x", valtype.Integer)

	fn := valtype.NewCallable(valtype.None, nil)
	require.True(t, tab.OpenSubroutine("f", fn))

	_, ok := tab.Find("x")
	require.False(t, ok, "an outer plain variable must not leak into a subroutine scope")

	_, ok = tab.InsertVar("x", valtype.Boolean)
	require.True(t, ok, "the inner scope may redeclare a name that only shadows an outer variable")
}

func TestSubroutineNameLeaksThroughForRecursion(t *testing.T) {
	tab := New()

	fn := valtype.NewCallable(valtype.Integer, []valtype.Type{valtype.Integer})
	require.True(t, tab.OpenSubroutine("f", fn))

	prop, ok := tab.Find("f")
	require.True(t, ok, "a callable's own name must be visible inside its body for recursive calls")
	require.True(t, prop.Type.IsCallable())
}

func TestOpenSubroutineRejectsNameClash(t *testing.T) {
	tab := New()
	tab.InsertVar("f", valtype.Integer)

	fn := valtype.NewCallable(valtype.None, nil)
	require.False(t, tab.OpenSubroutine("f", fn))
}

func TestCloseSubroutineRestoresOuterScope(t *testing.T) {
	tab := New()
	tab.InsertVar("g", valtype.Integer)

	fn := valtype.NewCallable(valtype.None, nil)
	tab.OpenSubroutine("f", fn)
	tab.InsertVar("local", valtype.Integer)
	tab.CloseSubroutine()

	_, ok := tab.Find("local")
	require.False(t, ok, "the inner scope's locals must not survive CloseSubroutine")

	_, ok = tab.Find("g")
	require.True(t, ok)
}

func TestRehashPreservesAllEntries(t *testing.T) {
	tab := New()

	const n = 200

	for i := 0; i < n; i++ {
		_, ok := tab.InsertVar(fmt.Sprintf("v%d", i), valtype.Integer)
		require.True(t, ok)
	}

	for i := 0; i < n; i++ {
		prop, ok := tab.Find(fmt.Sprintf("v%d", i))
		require.True(t, ok)
		require.Equal(t, uint32(i+1), prop.Offset)
	}
}
