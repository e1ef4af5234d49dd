package tree

import (
	"fmt"

	"github.com/glesirok/treepath/pkg/model"
)

// Element 内存中的树节点，实现 model.Node 和 model.Attacher
type Element struct {
	kind     model.Kind
	name     string
	parent   *Element
	attach   model.Attachment
	roles    []model.Role
	children map[model.Role][]model.Child
}

// New 创建一个未挂载的节点
func New(kind model.Kind, name string) *Element {
	return &Element{
		kind:     kind,
		name:     name,
		children: make(map[model.Role][]model.Child),
	}
}

func (e *Element) Kind() model.Kind { return e.kind }

func (e *Element) Name() string { return e.name }

// Parent 根节点返回 nil（注意不是包着 nil 指针的接口）
func (e *Element) Parent() model.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Roles() []model.Role {
	out := make([]model.Role, len(e.roles))
	copy(out, e.roles)
	return out
}

func (e *Element) Children(role model.Role) []model.Child {
	kids := e.children[role]
	if len(kids) == 0 {
		return nil
	}
	out := make([]model.Child, len(kids))
	copy(out, kids)
	return out
}

// Attachment 根节点返回 false
func (e *Element) Attachment() (model.Attachment, bool) {
	if e.parent == nil {
		return model.Attachment{}, false
	}
	return e.attach, true
}

// Set 设置单值角色的子节点，已存在时替换
func (e *Element) Set(role model.Role, child *Element) *Element {
	var prev *Element
	if kids, ok := e.children[role]; ok && len(kids) > 0 {
		prev = kids[0].Node.(*Element)
		if prev == child {
			return e
		}
	}

	e.adopt(child, model.Attachment{Role: role})
	if prev == nil {
		e.push(role, model.Child{Node: child})
		return e
	}

	prev.parent = nil
	prev.attach = model.Attachment{}
	e.children[role] = []model.Child{{Node: child}}
	return e
}

// Append 追加到列表角色末尾
func (e *Element) Append(role model.Role, child *Element) *Element {
	idx := len(e.children[role])
	e.adopt(child, model.Attachment{Role: role, Index: idx})
	e.push(role, model.Child{Node: child, Index: idx})
	return e
}

// Add 加入集合角色，成员通过名称区分
func (e *Element) Add(role model.Role, child *Element) *Element {
	e.adopt(child, model.Attachment{Role: role})
	e.push(role, model.Child{Node: child})
	return e
}

// Put 以 key 放入映射角色，key 重复时 panic
func (e *Element) Put(role model.Role, key string, child *Element) *Element {
	for _, c := range e.children[role] {
		if c.Key == key {
			panic(fmt.Sprintf("tree: duplicate key %q in role %s", key, role))
		}
	}
	e.adopt(child, model.Attachment{Role: role, Key: key})
	e.push(role, model.Child{Node: child, Key: key})
	return e
}

func (e *Element) push(role model.Role, c model.Child) {
	if _, ok := e.children[role]; !ok {
		e.roles = append(e.roles, role)
	}
	e.children[role] = append(e.children[role], c)
}

// adopt 一个节点只能有一个父节点
func (e *Element) adopt(child *Element, at model.Attachment) {
	if child == nil {
		panic("tree: nil child")
	}
	if child.parent != nil {
		panic(fmt.Sprintf("tree: %s %q already attached", child.kind, child.name))
	}
	for p := e; p != nil; p = p.parent {
		if p == child {
			panic("tree: cycle")
		}
	}
	child.parent = e
	child.attach = at
}

// String 便于调试
func (e *Element) String() string {
	if e.name == "" {
		return string(e.kind)
	}
	return fmt.Sprintf("%s(%s)", e.kind, e.name)
}
