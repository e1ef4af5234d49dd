package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/program"
	"github.com/glesirok/treepath/pkg/tree"
)

func TestNavigator_Paths(t *testing.T) {
	f := newFooFixture(t)

	tests := []struct {
		path string
		want []model.Node
	}{
		{".spoon.test.path.Foo", nodes(f.foo)},
		{".spoon.test.path.Foo/Method", nodes(f.fooM, f.barM)},
		{".spoon.test.path.Foo.foo#body#statement[index=0]", nodes(f.fooStmts[0])},
		{".spoon.test.path.Foo.*#body#statement[index=0]", nodes(f.ctorStmts[0], f.fooStmts[0], f.barStmts[0])},
		{".spoon.test.path.Foo.bar/Parameter", nodes(f.params...)},
		{".spoon.test.path.Foo.toto#defaultExpression", nodes(f.totoLit)},
		{".spoon.test.path.Foo.foo#body#statement", nodes(f.fooStmts...)},
		{".**/If#else", nodes(f.fooElse)},
		{".**#else", nodes(f.fooElse)},
		{".**/If", nodes(f.fooIf, f.barIf)},
		{".**.toto#defaultExpression", nodes(f.totoLit)},
		{".**/Package", nodes(f.root.Children(program.RoleSubPackage)[0].Node.(*tree.Element), childPkg(f, "test"), f.pathPkg)},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.find(t, tt.path))
		})
	}
}

func TestNavigator_Roles(t *testing.T) {
	f := newFooFixture(t)

	tests := []struct {
		path string
		want []model.Node
	}{
		{"#subPackage[name=spoon]#subPackage[name=test]#subPackage[name=path]#type[name=Foo]#typeMember[index=2]", nodes(f.fooM)},
		{"#subPackage[name=@sp.*@]", nodes(f.root.Children(program.RoleSubPackage)[0].Node.(*tree.Element))},
		{".spoon.test.path.Foo#typeMember[name=bar]", nodes(f.barM)},
		{".spoon.test.path.Foo.bar##annotation[index=0]#value[key=value]", nodes(f.annotVal)},
		{".spoon.test.path.Foo.bar#annotation[index=0]#value", nodes(f.annotVal)},
		{".spoon.test.path.Foo.bar#parameter[index=1]", nodes(f.params[1])},
		{".spoon.test.path.Foo.bar#parameter[name=i]", nodes(f.params[0])},
		{".spoon.test.path.Foo.foo#body#statement[index=2]#then#statement", nodes(childOf(f.fooIf, program.RoleThen, program.RoleStatement))},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.find(t, tt.path))
		})
	}
}

func TestNavigator_Wildcards(t *testing.T) {
	f := newFooFixture(t)

	assert.Equal(t, nodes(f.toto, f.ctor, f.fooM, f.barM), f.find(t, ".spoon.test.path.Foo.*"))
	assert.Equal(t, nodes(f.params...), f.find(t, ".spoon.test.path.Foo.**/Parameter"))

	// 递归通配符包含起点本身
	all := f.find(t, ".**")
	require.NotEmpty(t, all)
	assert.Equal(t, model.Node(f.root), all[0])

	fromFoo := NewNavigator(f.reg).Find(f.fooM, MustParse(f.reg, ".**"))
	require.NotEmpty(t, fromFoo)
	assert.Equal(t, model.Node(f.fooM), fromFoo[0])
}

func TestNavigator_Deduplicates(t *testing.T) {
	f := newFooFixture(t)

	once := f.find(t, ".**")
	twice := f.find(t, ".**.**")
	assert.Equal(t, once, twice)

	seen := make(map[model.Node]bool)
	for _, n := range twice {
		assert.False(t, seen[n], "duplicate %v", n)
		seen[n] = true
	}

	// 两个 If 都在结果里时，#else 只取到一次
	assert.Len(t, f.find(t, ".**.**/If#else"), 1)
}

func TestNavigator_WildcardAcrossRoles(t *testing.T) {
	reg := program.MustRegistry()

	thenBlock := tree.New(program.KindBlock, "")
	retA := tree.New(program.KindReturn, "a")
	thenBlock.Append(program.RoleStatement, retA)
	thenBlock.Append(program.RoleStatement, tree.New(program.KindReturn, "c"))

	elseBlock := tree.New(program.KindBlock, "")
	retB := tree.New(program.KindReturn, "b")
	elseBlock.Append(program.RoleStatement, retB)

	ifStmt := tree.New(program.KindIf, "")
	ifStmt.Set(program.RoleCondition, tree.New(program.KindBinaryOperator, ""))
	ifStmt.Set(program.RoleThen, thenBlock)
	ifStmt.Set(program.RoleElse, elseBlock)

	// then 和 else 是同一父节点的不同角色，结果按角色顺序排列
	got := Evaluate(reg, MustParse(reg, ".*#statement[index=0]"), ifStmt)
	assert.Equal(t, nodes(retA, retB), got)

	got = Evaluate(reg, MustParse(reg, ".*#statement"), ifStmt)
	assert.Len(t, got, 3)
}

func TestNavigator_Deterministic(t *testing.T) {
	f := newFooFixture(t)

	for _, s := range []string{
		".**",
		".spoon.test.path.Foo.*#body#statement[index=0]",
		".**/If#then#statement",
		".spoon.test.path.@.*@.*",
	} {
		t.Run(s, func(t *testing.T) {
			first := f.find(t, s)
			require.NotEmpty(t, first)
			assert.Equal(t, first, f.find(t, s))
		})
	}
}

func TestNavigator_RegexNames(t *testing.T) {
	f := newFooFixture(t)

	assert.Equal(t, nodes(f.barM), f.find(t, ".spoon.test.path.Foo.@ba.*@"))
	assert.Equal(t, nodes(f.toto, f.fooM), f.find(t, ".spoon.test.path.Foo.@o@"))
	assert.Equal(t, nodes(f.foo), f.find(t, ".spoon.test.path.@^F@"))
}

func TestNavigator_NoMatchIsEmpty(t *testing.T) {
	f := newFooFixture(t)

	tests := []string{
		".spoon.test.path.Foo.bar/Method",
		".spoon.test.path.Foo.toto#body",
		".nothing",
		".spoon.test.path.Foo.foo#body#statement[index=9]",
		".spoon.test.path.Foo.bar#annotation[index=0]#value[key=missing]",
		"#subPackage[name=other]",
		".**/While",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			assert.Empty(t, f.find(t, s))
		})
	}
}

func TestNavigator_UnnamedNodesDoNotMatchNames(t *testing.T) {
	f := newFooFixture(t)

	// Block、Literal 等没有名称，名称正则 .* 也不匹配
	got := f.find(t, ".spoon.test.path.Foo.foo.@.*@")
	for _, n := range got {
		assert.NotEmpty(t, n.Name())
	}
	assert.Equal(t, nodes(childOf(f.fooM, program.RoleReturnType)), got)
}

func TestNavigator_NilInputs(t *testing.T) {
	f := newFooFixture(t)
	nav := NewNavigator(f.reg)

	assert.Nil(t, nav.Find(nil, MustParse(f.reg, ".**")))
	assert.Nil(t, nav.Find(f.root, nil))
}

func TestEvaluate(t *testing.T) {
	f := newFooFixture(t)
	p := MustParse(f.reg, ".spoon.test.path.Foo/Method")

	assert.Equal(t, NewNavigator(f.reg).Find(f.root, p), Evaluate(f.reg, p, f.root))
}

func TestNavigator_DecodedTree(t *testing.T) {
	reg := program.MustRegistry()
	root, err := tree.DecodeFile(reg, "../../examples/trees/foo.yaml")
	require.NoError(t, err)

	got := Evaluate(reg, MustParse(reg, ".spoon.test.path.Foo/Method"), root)
	require.Len(t, got, 2)
	assert.Equal(t, "foo", got[0].Name())
	assert.Equal(t, "bar", got[1].Name())

	assert.Len(t, Evaluate(reg, MustParse(reg, ".spoon.test.path.Foo.*#body#statement[index=0]"), root), 3)
	assert.Len(t, Evaluate(reg, MustParse(reg, ".**/If#else"), root), 1)
}

// childPkg 按名称取 spoon 下的子包
func childPkg(f *fooFixture, name string) *tree.Element {
	spoon := f.root.Children(program.RoleSubPackage)[0].Node
	for _, c := range spoon.Children(program.RoleSubPackage) {
		if c.Node.Name() == name {
			return c.Node.(*tree.Element)
		}
	}
	return nil
}

// childOf 沿一串角色取第一个子节点
func childOf(n model.Node, roles ...model.Role) *tree.Element {
	for _, r := range roles {
		n = n.Children(r)[0].Node
	}
	return n.(*tree.Element)
}
