package path

import (
	"fmt"

	"github.com/glesirok/treepath/pkg/model"
)

// Locator 反向求解：给定目标节点和祖先上下文，构造连接二者的路径
type Locator struct {
	reg *model.Registry
}

// NewLocator 创建 Locator
func NewLocator(reg *model.Registry) *Locator {
	return &Locator{reg: reg}
}

// FromElement 返回从 context 到 target 的路径
//
// 沿 target 的父链向上，每一步确定挂载角色（list 用下标、map 用 key、set 用名称）
// 并前插一个角色片段。context 必须是 target 的严格祖先，否则返回包装了
// ErrNotAncestor 的错误，不返回部分路径。
// 结果满足 Find(context, path) == [target]。
func (l *Locator) FromElement(target, context model.Node) (*Path, error) {
	if target == nil || context == nil {
		return nil, ancestryError("target and context are required")
	}
	if target == context {
		return nil, ancestryError(fmt.Sprintf("context %s is the target itself", describe(context)))
	}

	// 先确认祖先关系，失败时不做任何位置计算
	found := false
	for p := target.Parent(); p != nil; p = p.Parent() {
		if p == context {
			found = true
			break
		}
	}
	if !found {
		return nil, ancestryError(fmt.Sprintf("no path to %s from %s", describe(target), describe(context)))
	}

	var reversed []Segment
	for node := target; node != context; node = node.Parent() {
		seg, err := l.step(node)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, seg)
	}

	segments := make([]Segment, len(reversed))
	for i, seg := range reversed {
		segments[len(reversed)-1-i] = seg
	}
	return &Path{segments: segments}, nil
}

// step 生成从父节点重新选中 node 的角色片段
func (l *Locator) step(node model.Node) (Segment, error) {
	at, err := attachment(node)
	if err != nil {
		return Segment{}, err
	}

	c, cerr := l.reg.Cardinality(at.Role)
	if cerr != nil {
		return Segment{}, &Error{
			Type:    ErrorTypeRole,
			Message: fmt.Sprintf("Unable to locate role %s in %s", at.Role, l.reg.Designator()),
			Cause:   ErrUnknownRole,
		}
	}

	seg := Segment{Type: SegmentTypeRole, Literal: string(at.Role)}
	switch c {
	case model.CardinalityList:
		seg.Filter = Index(at.Index)
	case model.CardinalityMap:
		if at.Key == "" || checkValue(at.Key) != nil {
			return Segment{}, &Error{
				Type:    ErrorTypeAddress,
				Message: fmt.Sprintf("key %q of %s cannot be written as a filter", at.Key, describe(node)),
				Cause:   ErrUnaddressable,
			}
		}
		seg.Filter = Key(at.Key)
	case model.CardinalitySet:
		if node.Name() == "" {
			return Segment{}, &Error{
				Type:    ErrorTypeAddress,
				Message: fmt.Sprintf("%s in set role %s has no name", describe(node), at.Role),
				Cause:   ErrUnaddressable,
			}
		}
		if checkValue(node.Name()) != nil || isPattern(node.Name()) {
			return Segment{}, &Error{
				Type:    ErrorTypeAddress,
				Message: fmt.Sprintf("name %q of %s cannot be written as a filter", node.Name(), describe(node)),
				Cause:   ErrUnaddressable,
			}
		}
		same := 0
		for _, sibling := range node.Parent().Children(at.Role) {
			if sibling.Node.Name() == node.Name() {
				same++
			}
		}
		if same > 1 {
			return Segment{}, &Error{
				Type:    ErrorTypeAddress,
				Message: fmt.Sprintf("%d members of set role %s are named %s", same, at.Role, node.Name()),
				Cause:   ErrUnaddressable,
			}
		}
		seg.Filter = Named(node.Name())
	}
	return seg, nil
}

// attachment 优先使用宿主提供的挂载信息，否则在父节点中查找
func attachment(node model.Node) (model.Attachment, error) {
	if a, ok := node.(model.Attacher); ok {
		if at, ok := a.Attachment(); ok {
			return at, nil
		}
	}

	parent := node.Parent()
	if parent != nil {
		for _, role := range parent.Roles() {
			for _, child := range parent.Children(role) {
				if child.Node == node {
					return model.Attachment{Role: role, Index: child.Index, Key: child.Key}, nil
				}
			}
		}
	}

	return model.Attachment{}, &Error{
		Type:    ErrorTypeAddress,
		Message: fmt.Sprintf("%s is not reachable from its parent", describe(node)),
		Cause:   ErrUnaddressable,
	}
}

func ancestryError(msg string) error {
	return &Error{Type: ErrorTypeAncestry, Message: msg, Cause: ErrNotAncestor}
}

func describe(node model.Node) string {
	if name := node.Name(); name != "" {
		return fmt.Sprintf("%s %s", node.Kind(), name)
	}
	return string(node.Kind())
}
