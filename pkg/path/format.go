package path

import (
	"strconv"
	"strings"

	"github.com/glesirok/treepath/pkg/model"
)

// String 返回路径的规范文本形式，Parse(reg, p.String()) 与 p 逐片段相等
func (p *Path) String() string {
	var b strings.Builder
	for _, seg := range p.segments {
		seg.writeTo(&b)
	}
	return b.String()
}

// String 返回单个片段的文本形式
func (s Segment) String() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

func (s Segment) writeTo(b *strings.Builder) {
	switch s.Type {
	case SegmentTypeName:
		b.WriteByte('.')
		b.WriteString(s.Literal)
	case SegmentTypeWildcard:
		b.WriteString(".*")
	case SegmentTypeRecursiveWildcard:
		b.WriteString(".**")
	case SegmentTypeType:
		b.WriteByte('/')
		b.WriteString(s.Literal)
	case SegmentTypeRole:
		b.WriteByte('#')
		if s.Secondary {
			b.WriteByte('#')
		}
		b.WriteString(s.Literal)
		s.Filter.writeTo(b)
	}
}

// String 返回过滤器的文本形式，如 [index=0]；没有过滤器时为空串
func (f Filter) String() string {
	var b strings.Builder
	f.writeTo(&b)
	return b.String()
}

func (f Filter) writeTo(b *strings.Builder) {
	if f.IsZero() {
		return
	}

	b.WriteByte('[')
	b.WriteString(f.Kind.String())
	b.WriteByte('=')
	if f.Kind == model.FilterIndex {
		b.WriteString(strconv.Itoa(f.Index))
	} else {
		b.WriteString(f.Value)
	}
	b.WriteByte(']')
}
