package path

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/program"
	"github.com/glesirok/treepath/pkg/tree"
)

func TestLocator_FromElement(t *testing.T) {
	f := newFooFixture(t)
	loc := NewLocator(f.reg)

	tests := []struct {
		name    string
		target  model.Node
		context model.Node
		want    string
	}{
		{"method from root", f.fooM, f.root, "#subPackage[name=spoon]#subPackage[name=test]#subPackage[name=path]#type[name=Foo]#typeMember[index=2]"},
		{"else from method", f.fooElse, f.fooM, "#body#statement[index=2]#else"},
		{"map member", f.annotVal, f.barM, "#annotation[index=0]#value[key=value]"},
		{"direct child", f.params[1], f.barM, "#parameter[index=1]"},
		{"single role", f.totoLit, f.toto, "#defaultExpression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := loc.FromElement(tt.target, tt.context)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
			assert.Equal(t, []model.Node{tt.target}, Evaluate(f.reg, p, tt.context))
		})
	}
}

func TestLocator_RoundTripEveryNode(t *testing.T) {
	f := newFooFixture(t)
	loc := NewLocator(f.reg)

	all := f.find(t, ".**")
	require.Greater(t, len(all), 30)

	for _, target := range all[1:] {
		p, err := loc.FromElement(target, f.root)
		require.NoError(t, err, "target %v", target)

		// 文本形式也能还原
		reparsed, err := Parse(f.reg, p.String())
		require.NoError(t, err)
		assert.True(t, p.Equal(reparsed))

		assert.Equal(t, []model.Node{target}, Evaluate(f.reg, reparsed, f.root), "path %s", p)
	}
}

func TestLocator_NotAncestor(t *testing.T) {
	f := newFooFixture(t)
	loc := NewLocator(f.reg)

	tests := []struct {
		name    string
		target  model.Node
		context model.Node
	}{
		{"sibling method", f.foo, f.barM},
		{"sibling member", f.fooM, f.barM},
		{"descendant as context", f.fooM, f.fooElse},
		{"self", f.fooM, f.fooM},
		{"nil target", nil, f.root},
		{"nil context", f.fooM, nil},
		{"other tree", f.fooM, tree.New(program.KindPackage, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := loc.FromElement(tt.target, tt.context)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, IsAncestryError(err))
			assert.True(t, errors.Is(err, ErrNotAncestor))
			assert.False(t, IsGrammarError(err))
		})
	}
}

func TestLocator_Unaddressable(t *testing.T) {
	reg := program.MustRegistry()
	loc := NewLocator(reg)

	t.Run("unnamed set member", func(t *testing.T) {
		root := tree.New(program.KindPackage, "")
		anon := tree.New(program.KindPackage, "")
		root.Add(program.RoleSubPackage, anon)

		_, err := loc.FromElement(anon, root)
		assert.True(t, errors.Is(err, ErrUnaddressable))
	})

	t.Run("duplicate names in set", func(t *testing.T) {
		pkg := tree.New(program.KindPackage, "p")
		first := tree.New(program.KindClass, "A")
		pkg.Add(program.RoleType, first)
		pkg.Add(program.RoleType, tree.New(program.KindInterface, "A"))

		_, err := loc.FromElement(first, pkg)
		assert.True(t, errors.Is(err, ErrUnaddressable))
	})

	t.Run("name looks like a pattern", func(t *testing.T) {
		pkg := tree.New(program.KindPackage, "p")
		odd := tree.New(program.KindClass, "@A@")
		pkg.Add(program.RoleType, odd)

		_, err := loc.FromElement(odd, pkg)
		assert.True(t, errors.Is(err, ErrUnaddressable))
	})

	t.Run("name with bracket", func(t *testing.T) {
		pkg := tree.New(program.KindPackage, "p")
		odd := tree.New(program.KindClass, "A]")
		pkg.Add(program.RoleType, odd)

		_, err := loc.FromElement(odd, pkg)
		assert.True(t, errors.Is(err, ErrUnaddressable))
	})

	t.Run("map key with bracket", func(t *testing.T) {
		annot := tree.New(program.KindAnnotation, "Deprecated")
		lit := tree.New(program.KindLiteral, "x")
		annot.Put(program.RoleValue, "a]", lit)

		_, err := loc.FromElement(lit, annot)
		assert.True(t, errors.Is(err, ErrUnaddressable))
	})

	t.Run("unknown role", func(t *testing.T) {
		pkg := tree.New(program.KindPackage, "p")
		child := tree.New(program.KindClass, "A")
		pkg.Add("member", child)

		_, err := loc.FromElement(child, pkg)
		assert.True(t, errors.Is(err, ErrUnknownRole))
	})
}

// plainNode 不实现 model.Attacher，定位时需要扫描父节点
type plainNode struct {
	kind     model.Kind
	name     string
	parent   *plainNode
	roles    []model.Role
	children map[model.Role][]model.Child
}

func (n *plainNode) Kind() model.Kind { return n.kind }

func (n *plainNode) Name() string { return n.name }

func (n *plainNode) Roles() []model.Role { return n.roles }

func (n *plainNode) Children(r model.Role) []model.Child { return n.children[r] }

func (n *plainNode) Parent() model.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *plainNode) append(role model.Role, child *plainNode) {
	if n.children == nil {
		n.children = make(map[model.Role][]model.Child)
	}
	if _, ok := n.children[role]; !ok {
		n.roles = append(n.roles, role)
	}
	child.parent = n
	n.children[role] = append(n.children[role], model.Child{Node: child, Index: len(n.children[role])})
}

func TestLocator_WithoutAttacher(t *testing.T) {
	reg := program.MustRegistry()

	method := &plainNode{kind: program.KindMethod, name: "m"}
	a := &plainNode{kind: program.KindParameter, name: "a"}
	b := &plainNode{kind: program.KindParameter, name: "b"}
	method.append(program.RoleParameter, a)
	method.append(program.RoleParameter, b)

	p, err := NewLocator(reg).FromElement(b, method)
	require.NoError(t, err)
	assert.Equal(t, "#parameter[index=1]", p.String())
	assert.Equal(t, []model.Node{b}, Evaluate(reg, p, method))
}
