package path

import (
	"github.com/dlclark/regexp2"

	"github.com/glesirok/treepath/pkg/model"
)

// Navigator 负责在树中按路径查找节点
//
// 只读，可并发使用；查找期间宿主树不能被修改。
type Navigator struct {
	reg *model.Registry
}

// NewNavigator 创建 Navigator
func NewNavigator(reg *model.Registry) *Navigator {
	return &Navigator{reg: reg}
}

// Evaluate 是 NewNavigator(reg).Find(start, p) 的简写
func Evaluate(reg *model.Registry, p *Path, start model.Node) []model.Node {
	return NewNavigator(reg).Find(start, p)
}

// Find 根据路径查找所有匹配的节点
//
// 候选集从 {start} 开始，每个片段把候选集替换为对每个候选应用该片段的结果之并集。
// 结果按首次出现的顺序去重；找不到不是错误，返回空切片。
func (n *Navigator) Find(start model.Node, p *Path) []model.Node {
	if start == nil || p == nil {
		return nil
	}

	m := newMatcher()
	candidates := []model.Node{start}

	for _, seg := range p.segments {
		next := newNodeSet()
		for _, c := range candidates {
			n.apply(c, seg, m, next)
		}

		candidates = next.nodes
		if len(candidates) == 0 {
			break
		}
	}

	return candidates
}

// apply 对单个候选应用片段
func (n *Navigator) apply(node model.Node, seg Segment, m *matcher, out *nodeSet) {
	switch seg.Type {
	case SegmentTypeName:
		for _, child := range children(node) {
			if m.match(seg.Literal, child.Name()) {
				out.add(child)
			}
		}

	case SegmentTypeType:
		for _, child := range children(node) {
			if string(child.Kind()) == seg.Literal {
				out.add(child)
			}
		}

	case SegmentTypeRole:
		n.findRole(node, seg, m, out)

	case SegmentTypeWildcard:
		for _, child := range children(node) {
			out.add(child)
		}

	case SegmentTypeRecursiveWildcard:
		descend(node, out)
	}
}

// findRole 按角色基数取子节点并应用过滤器
func (n *Navigator) findRole(node model.Node, seg Segment, m *matcher, out *nodeSet) {
	role := model.Role(seg.Literal)
	c, err := n.reg.Cardinality(role)
	if err != nil {
		return // 未知角色：没有匹配
	}

	for _, child := range node.Children(role) {
		switch seg.Filter.Kind {
		case model.FilterNone:
			out.add(child.Node)

		case model.FilterIndex:
			if c == model.CardinalityList && child.Index == seg.Filter.Index {
				out.add(child.Node)
			}

		case model.FilterKey:
			if c == model.CardinalityMap && child.Key == seg.Filter.Value {
				out.add(child.Node)
			}

		case model.FilterName:
			if c != model.CardinalitySingle && m.match(seg.Filter.Value, child.Node.Name()) {
				out.add(child.Node)
			}
		}
	}
}

// children 通过所有角色取直接子节点，按角色顺序
func children(node model.Node) []model.Node {
	var out []model.Node
	for _, role := range node.Roles() {
		for _, child := range node.Children(role) {
			out = append(out, child.Node)
		}
	}
	return out
}

// descend 先序加入节点本身和全部后代
func descend(node model.Node, out *nodeSet) {
	stack := []model.Node{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.add(top)

		kids := children(top)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// nodeSet 保持插入顺序的去重集合
type nodeSet struct {
	seen  map[model.Node]struct{}
	nodes []model.Node
}

func newNodeSet() *nodeSet {
	return &nodeSet{seen: make(map[model.Node]struct{})}
}

func (s *nodeSet) add(node model.Node) {
	if node == nil {
		return
	}
	if _, ok := s.seen[node]; ok {
		return
	}
	s.seen[node] = struct{}{}
	s.nodes = append(s.nodes, node)
}

// matcher 名称匹配，@pattern@ 按正则匹配，编译结果在一次查找内复用
type matcher struct {
	patterns map[string]*regexp2.Regexp
}

func newMatcher() *matcher {
	return &matcher{patterns: make(map[string]*regexp2.Regexp)}
}

// match 没有名称的节点不匹配任何名称
func (m *matcher) match(literal, name string) bool {
	if name == "" {
		return false
	}
	if !isPattern(literal) {
		return literal == name
	}

	re, ok := m.patterns[literal]
	if !ok {
		var err error
		re, err = regexp2.Compile(literal[1:len(literal)-1], 0)
		if err != nil {
			re = nil
		}
		m.patterns[literal] = re
	}
	if re == nil {
		return false
	}

	matched, err := re.MatchString(name)
	return err == nil && matched
}
