package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alan-2022/alanc/internal/valtype"
)

func TestMainSmoke(t *testing.T) {
	e := New("P")
	e.OpenMain()
	e.LoadConstInt(2)
	e.LoadConstInt(3)
	e.EmitArith(Add)
	e.EmitPrintValue(valtype.Integer)
	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	out := string(e.Flush())

	require.Contains(t, out, ".class public P")
	require.Contains(t, out, "public static main([Ljava/lang/String;)V")
	require.Contains(t, out, "iadd")
	require.Contains(t, out, "invokevirtual java/io/PrintStream/print(I)V")
}

func TestRelOpMaterializesBoolean(t *testing.T) {
	e := New("Q")
	e.OpenMain()
	e.LoadConstInt(1)
	e.LoadConstInt(2)
	e.EmitRelOp(Lt)
	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	out := string(e.Flush())

	require.Contains(t, out, "if_icmplt")
	require.Contains(t, out, "iconst_0")
	require.Contains(t, out, "iconst_1")
	require.Contains(t, out, "goto")
}

func TestIfChainDefinesAllLabels(t *testing.T) {
	e := New("R")
	e.OpenMain()

	e.LoadConstBool(true)
	chain := e.NewIfChain()
	chain.StartBranch()
	e.LoadConstInt(1)
	e.EmitReturnVoid()
	chain.EndBranch()
	chain.End()

	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	require.NotPanics(t, func() { e.Flush() })
}

func TestWhileLoopDefinesAllLabels(t *testing.T) {
	e := New("S")
	e.OpenMain()

	loop := e.NewWhileLoop()
	e.LoadConstBool(false)
	loop.GuardFailed()
	loop.End()

	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	require.NotPanics(t, func() { e.Flush() })
}

func TestCallDescriptor(t *testing.T) {
	e := New("T")
	e.OpenSubroutine("f", []valtype.Type{valtype.Integer, valtype.Boolean}, valtype.Integer)
	e.LoadLocal(1, valtype.Integer)
	e.EmitReturnValue(valtype.Integer)
	e.CloseSubroutine(3)

	e.OpenMain()
	e.LoadConstInt(1)
	e.LoadConstBool(true)
	e.EmitCall("T", "f", []valtype.Type{valtype.Integer, valtype.Boolean}, valtype.Integer)
	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	out := string(e.Flush())

	require.Contains(t, out, "public static f(IZ)I")
	require.Contains(t, out, "invokestatic T/f(IZ)I")
}

func TestEmitPrintStringDoesNotSwapReceiverAndArgument(t *testing.T) {
	e := New("V")
	e.OpenMain()
	e.EmitPrintString("hi")
	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	out := string(e.Flush())

	require.NotContains(t, out, "swap",
		"getstatic out; ldc string already leaves [out, str] in the right order for print(Ljava/lang/String;)V; a swap would put the String receiver ahead of the PrintStream argument")

	getstaticIdx := strings.Index(out, "getstatic java/lang/System/out")
	ldcIdx := strings.Index(out, `ldc "hi"`)
	invokeIdx := strings.Index(out, "invokevirtual java/io/PrintStream/print(Ljava/lang/String;)V")

	require.True(t, getstaticIdx >= 0 && ldcIdx > getstaticIdx && invokeIdx > ldcIdx)
}

func TestStringPoolDedup(t *testing.T) {
	e := New("U")
	e.OpenMain()
	e.EmitPrintString("hi")
	e.EmitPrintString("hi")
	e.EmitReturnVoid()
	e.CloseSubroutine(1)

	require.Equal(t, 1, e.PoolSize())
}
