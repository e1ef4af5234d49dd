package gosrc

import (
	"go/ast"
	"go/token"

	"github.com/glesirok/treepath/pkg/model"
)

// Node 包装一个 AST 节点，实现 model.Node 和 model.Attacher
type Node struct {
	kind     model.Kind
	name     string
	parent   *Node
	attach   model.Attachment
	roles    []model.Role
	children map[model.Role][]model.Child

	ast ast.Node
	pos token.Position
}

func newNode(kind model.Kind, name string) *Node {
	return &Node{
		kind:     kind,
		name:     name,
		children: make(map[model.Role][]model.Child),
	}
}

func (n *Node) Kind() model.Kind { return n.kind }

func (n *Node) Name() string { return n.name }

func (n *Node) Parent() model.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Roles() []model.Role {
	out := make([]model.Role, len(n.roles))
	copy(out, n.roles)
	return out
}

func (n *Node) Children(role model.Role) []model.Child {
	kids := n.children[role]
	if len(kids) == 0 {
		return nil
	}
	out := make([]model.Child, len(kids))
	copy(out, kids)
	return out
}

func (n *Node) Attachment() (model.Attachment, bool) {
	if n.parent == nil {
		return model.Attachment{}, false
	}
	return n.attach, true
}

// AST 返回对应的语法节点，Program 和 Package 返回 nil
func (n *Node) AST() ast.Node { return n.ast }

// Position 节点在源文件中的位置，Program 和 Package 为零值
func (n *Node) Position() token.Position { return n.pos }

func (n *Node) String() string {
	if n.name == "" {
		return string(n.kind)
	}
	return string(n.kind) + "(" + n.name + ")"
}

// attachChild 挂到 role 下；list 角色的下标按挂载顺序分配
func (n *Node) attachChild(role model.Role, child *Node, list bool) {
	at := model.Attachment{Role: role}
	if list {
		at.Index = len(n.children[role])
	}
	child.parent = n
	child.attach = at

	if _, ok := n.children[role]; !ok {
		n.roles = append(n.roles, role)
	}
	n.children[role] = append(n.children[role], model.Child{Node: child, Index: at.Index})
}

// nameOf 标识符、带 Name 字段的声明，以及只声明一个名字的字段和变量
func nameOf(n ast.Node) string {
	switch x := n.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.FuncDecl:
		return identName(x.Name)
	case *ast.TypeSpec:
		return identName(x.Name)
	case *ast.Field:
		if len(x.Names) == 1 {
			return identName(x.Names[0])
		}
	case *ast.ValueSpec:
		if len(x.Names) == 1 {
			return identName(x.Names[0])
		}
	case *ast.LabeledStmt:
		return identName(x.Label)
	}
	return ""
}

func identName(id *ast.Ident) string {
	if id == nil {
		return ""
	}
	return id.Name
}
