package path

import (
	"fmt"

	"github.com/glesirok/treepath/pkg/model"
)

// Builder 不经过文本直接构造路径
//
// 每次追加都返回新的 Builder，旧值不受影响，可以从同一个前缀分叉：
//
//	base := path.NewBuilder(reg).Name("spoon").Name("test")
//	a, _ := base.Name("Foo").Build()
//	b, _ := base.RecursiveWildcard().Type("If").Build()
type Builder struct {
	v        validator
	segments []Segment
	err      *Error
}

// NewBuilder 创建空的 Builder
func NewBuilder(reg *model.Registry) Builder {
	return Builder{v: validator{reg: reg}}
}

// Name 追加名称片段 .name
func (b Builder) Name(name string) Builder {
	return b.append(Segment{Type: SegmentTypeName, Literal: name})
}

// Type 追加类型片段 /Kind
func (b Builder) Type(kind model.Kind) Builder {
	return b.append(Segment{Type: SegmentTypeType, Literal: string(kind)})
}

// Role 追加角色片段 #role，最多一个过滤器
func (b Builder) Role(role model.Role, filter ...Filter) Builder {
	return b.role(role, false, filter)
}

// SecondaryRole 追加 ##role 形式的角色片段
func (b Builder) SecondaryRole(role model.Role, filter ...Filter) Builder {
	return b.role(role, true, filter)
}

// Wildcard 追加单层通配符 .*
func (b Builder) Wildcard() Builder {
	return b.append(Segment{Type: SegmentTypeWildcard})
}

// RecursiveWildcard 追加递归通配符 .**
func (b Builder) RecursiveWildcard() Builder {
	return b.append(Segment{Type: SegmentTypeRecursiveWildcard})
}

// Build 冻结为 Path，返回第一个校验错误
func (b Builder) Build() (*Path, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.segments) == 0 {
		return nil, &Error{Type: ErrorTypeSyntax, Message: "empty path", Cause: ErrSyntax}
	}

	segments := make([]Segment, len(b.segments))
	copy(segments, b.segments)
	return &Path{segments: segments}, nil
}

func (b Builder) role(role model.Role, secondary bool, filter []Filter) Builder {
	seg := Segment{Type: SegmentTypeRole, Literal: string(role), Secondary: secondary}

	switch len(filter) {
	case 0:
	case 1:
		seg.Filter = filter[0]
	default:
		if b.err == nil {
			b.err = &Error{
				Type:    ErrorTypeSyntax,
				Message: fmt.Sprintf("only one filter is allowed per role segment, got %d on %s", len(filter), role),
				Cause:   ErrSyntax,
			}
		}
		return b
	}

	return b.append(seg)
}

// append 复制后追加，保证之前的 Builder 不被修改
func (b Builder) append(seg Segment) Builder {
	if b.err != nil {
		return b
	}
	if err := b.v.segment(seg); err != nil {
		b.err = err
		return b
	}

	segments := make([]Segment, len(b.segments), len(b.segments)+1)
	copy(segments, b.segments)
	b.segments = append(segments, seg)
	return b
}
