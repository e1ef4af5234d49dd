package path

import (
	"testing"

	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/program"
	"github.com/glesirok/treepath/pkg/tree"
)

// fooFixture 与 examples/trees/foo.yaml 相同结构的树，保留关键节点的引用
type fooFixture struct {
	reg  *model.Registry
	root *tree.Element

	pathPkg *tree.Element
	foo     *tree.Element // class Foo
	toto    *tree.Element
	totoLit *tree.Element
	ctor    *tree.Element
	fooM    *tree.Element // method foo()
	barM    *tree.Element // method bar(int, int)

	ctorStmts []*tree.Element
	fooStmts  []*tree.Element
	barStmts  []*tree.Element
	params    []*tree.Element

	fooIf    *tree.Element
	fooElse  *tree.Element
	barIf    *tree.Element
	annot    *tree.Element
	annotVal *tree.Element
}

func newFooFixture(t *testing.T) *fooFixture {
	t.Helper()

	f := &fooFixture{reg: program.MustRegistry()}
	el := tree.New

	f.root = el(program.KindPackage, "")
	spoon := el(program.KindPackage, "spoon")
	test := el(program.KindPackage, "test")
	f.pathPkg = el(program.KindPackage, "path")
	f.root.Add(program.RoleSubPackage, spoon)
	spoon.Add(program.RoleSubPackage, test)
	test.Add(program.RoleSubPackage, f.pathPkg)

	f.foo = el(program.KindClass, "Foo")
	f.pathPkg.Add(program.RoleType, f.foo)

	// String toto = "salut";
	f.toto = el(program.KindField, "toto")
	f.totoLit = el(program.KindLiteral, "")
	f.toto.Set(program.RoleTypeReference, el(program.KindTypeReference, "String"))
	f.toto.Set(program.RoleDefaultExpression, f.totoLit)

	// Foo() { super(); }
	f.ctor = el(program.KindConstructor, "<init>")
	ctorBody := el(program.KindBlock, "")
	f.ctorStmts = []*tree.Element{el(program.KindInvocation, "super")}
	ctorBody.Append(program.RoleStatement, f.ctorStmts[0])
	f.ctor.Set(program.RoleBody, ctorBody)

	// void foo() { int x = 3; x = x + 1; if (x > 0) {...} else { return; } }
	f.fooM = el(program.KindMethod, "foo")
	f.fooM.Set(program.RoleReturnType, el(program.KindTypeReference, "void"))
	fooBody := el(program.KindBlock, "")
	local := el(program.KindLocalVariable, "x").
		Set(program.RoleDefaultExpression, el(program.KindLiteral, ""))
	assign := el(program.KindAssignment, "").
		Set(program.RoleAssigned, el(program.KindVariableWrite, "x")).
		Set(program.RoleAssignment, el(program.KindBinaryOperator, "").
			Set(program.RoleLeftOperand, el(program.KindVariableRead, "x")).
			Set(program.RoleRightOperand, el(program.KindLiteral, "")))
	f.fooElse = el(program.KindBlock, "").Append(program.RoleStatement, el(program.KindReturn, ""))
	f.fooIf = el(program.KindIf, "").
		Set(program.RoleCondition, el(program.KindBinaryOperator, "")).
		Set(program.RoleThen, el(program.KindBlock, "").
			Append(program.RoleStatement, el(program.KindInvocation, "println"))).
		Set(program.RoleElse, f.fooElse)
	f.fooStmts = []*tree.Element{local, assign, f.fooIf}
	for _, s := range f.fooStmts {
		fooBody.Append(program.RoleStatement, s)
	}
	f.fooM.Set(program.RoleBody, fooBody)

	// @SuppressWarnings("unchecked") void bar(int i, int j) { int y = i; if (i > j) {...} }
	f.barM = el(program.KindMethod, "bar")
	f.annot = el(program.KindAnnotation, "SuppressWarnings")
	f.annotVal = el(program.KindLiteral, "")
	f.annot.Put(program.RoleValue, "value", f.annotVal)
	f.barM.Append(program.RoleAnnotation, f.annot)
	f.barM.Set(program.RoleReturnType, el(program.KindTypeReference, "void"))
	f.params = []*tree.Element{el(program.KindParameter, "i"), el(program.KindParameter, "j")}
	for _, p := range f.params {
		f.barM.Append(program.RoleParameter, p)
	}
	barBody := el(program.KindBlock, "")
	f.barIf = el(program.KindIf, "").
		Set(program.RoleCondition, el(program.KindBinaryOperator, "")).
		Set(program.RoleThen, el(program.KindBlock, ""))
	f.barStmts = []*tree.Element{
		el(program.KindLocalVariable, "y").Set(program.RoleDefaultExpression, el(program.KindVariableRead, "i")),
		f.barIf,
	}
	for _, s := range f.barStmts {
		barBody.Append(program.RoleStatement, s)
	}
	f.barM.Set(program.RoleBody, barBody)

	for _, m := range []*tree.Element{f.toto, f.ctor, f.fooM, f.barM} {
		f.foo.Append(program.RoleTypeMember, m)
	}

	return f
}

// find 从根节点开始求值文本路径
func (f *fooFixture) find(t *testing.T, s string) []model.Node {
	t.Helper()
	p, err := Parse(f.reg, s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return NewNavigator(f.reg).Find(f.root, p)
}

func nodes(elems ...*tree.Element) []model.Node {
	out := make([]model.Node, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}
