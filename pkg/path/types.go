package path

import "github.com/glesirok/treepath/pkg/model"

// Segment 表示路径的一个片段
type Segment struct {
	Type      SegmentType
	Literal   string // 名称、类型或角色，如 "foo"、"Method"、"statement"
	Secondary bool   // 角色片段使用 ## 标记
	Filter    Filter // 角色片段的过滤器，如 [index=0]
}

type SegmentType int

const (
	SegmentTypeName              SegmentType = iota // .name
	SegmentTypeType                                 // /Kind
	SegmentTypeRole                                 // #role 或 ##role
	SegmentTypeWildcard                             // .*
	SegmentTypeRecursiveWildcard                    // .**
)

// String 返回片段类型名
func (t SegmentType) String() string {
	switch t {
	case SegmentTypeName:
		return "name"
	case SegmentTypeType:
		return "type"
	case SegmentTypeRole:
		return "role"
	case SegmentTypeWildcard:
		return "wildcard"
	case SegmentTypeRecursiveWildcard:
		return "recursive wildcard"
	default:
		return "unknown"
	}
}

// Filter 表示角色片段上的过滤器
type Filter struct {
	Kind  model.FilterKind
	Index int    // [index=N]
	Value string // [name=s] 或 [key=k]
}

// IsZero 没有过滤器
func (f Filter) IsZero() bool {
	return f.Kind == model.FilterNone
}

// Index 创建下标过滤器
func Index(n int) Filter {
	return Filter{Kind: model.FilterIndex, Index: n}
}

// Named 创建名称过滤器，值可以是 @pattern@ 形式的正则
func Named(name string) Filter {
	return Filter{Kind: model.FilterName, Value: name}
}

// Key 创建键过滤器
func Key(k string) Filter {
	return Filter{Kind: model.FilterKey, Value: k}
}

// Path 表示解析后的完整路径，构造后不可变
type Path struct {
	segments []Segment
}

// Segments 返回片段的副本
func (p *Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Len 片段数
func (p *Path) Len() int {
	return len(p.segments)
}

// Equal 逐片段比较
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Join 返回 p 之后接上 next 的新路径
func (p *Path) Join(next *Path) *Path {
	segments := make([]Segment, 0, len(p.segments)+len(next.segments))
	segments = append(segments, p.segments...)
	segments = append(segments, next.segments...)
	return &Path{segments: segments}
}
