package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glesirok/treepath/pkg/model"
)

// Parse 解析路径字符串
// 支持语法：
//   - .spoon.test.Foo          名称
//   - .* / .**                 单层 / 递归通配符（也可以不带前导 .）
//   - /Method                  类型
//   - #body / ##annotation     角色
//   - #statement[index=0]      下标过滤（list）
//   - #subPackage[name=foo]    名称过滤（set、list、map），支持 @pattern@ 正则
//   - #value[key=k]            键过滤（map）
func Parse(reg *model.Registry, pathStr string) (*Path, error) {
	if pathStr == "" {
		return nil, &Error{Type: ErrorTypeSyntax, Message: "empty path", Cause: ErrSyntax}
	}

	p := &parser{
		v:     validator{reg: reg},
		input: pathStr,
	}
	return p.parse()
}

// MustParse 解析失败时 panic，用于固定的路径常量
func MustParse(reg *model.Registry, pathStr string) *Path {
	p, err := Parse(reg, pathStr)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	v        validator
	input    string
	pos      int
	segments []Segment
}

// parse 从左到右扫描一遍，每组 token 产生一个片段
func (p *parser) parse() (*Path, error) {
	for p.pos < len(p.input) {
		start := p.pos

		seg, perr := p.next()
		if perr != nil {
			return nil, p.fail(perr, start)
		}
		if verr := p.v.segment(seg); verr != nil {
			return nil, p.fail(verr, start)
		}

		p.segments = append(p.segments, seg)
	}

	return &Path{segments: p.segments}, nil
}

// next 解析下一个片段
func (p *parser) next() (Segment, *Error) {
	switch ch := p.input[p.pos]; ch {
	case '.':
		p.pos++
		lit := p.literal()
		switch lit {
		case "*":
			return Segment{Type: SegmentTypeWildcard}, nil
		case "**":
			return Segment{Type: SegmentTypeRecursiveWildcard}, nil
		}
		return Segment{Type: SegmentTypeName, Literal: lit}, nil

	case '/':
		p.pos++
		return Segment{Type: SegmentTypeType, Literal: p.literal()}, nil

	case '#':
		p.pos++
		seg := Segment{Type: SegmentTypeRole}
		if p.pos < len(p.input) && p.input[p.pos] == '#' {
			seg.Secondary = true
			p.pos++
		}
		seg.Literal = p.literal()

		if p.pos < len(p.input) && p.input[p.pos] == '[' {
			f, err := p.filter()
			if err != nil {
				return Segment{}, err
			}
			seg.Filter = f
		}
		if p.pos < len(p.input) && p.input[p.pos] == '[' {
			return Segment{}, syntaxError("only one filter is allowed per role segment")
		}
		return seg, nil

	case '*':
		seg := Segment{Type: SegmentTypeWildcard}
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] == '*' {
			seg.Type = SegmentTypeRecursiveWildcard
			p.pos++
		}
		if p.pos < len(p.input) && !isMarker(p.input[p.pos]) {
			return Segment{}, syntaxError(fmt.Sprintf("unexpected '%c' after wildcard", p.input[p.pos]))
		}
		return seg, nil

	case '[':
		return Segment{}, syntaxError("filter must follow a role segment")

	default:
		return Segment{}, syntaxError(fmt.Sprintf("unexpected '%c', expected '.', '/', '#' or '*'", ch))
	}
}

// literal 读取到下一个标记字符为止，@...@ 内部的标记字符不截断
func (p *parser) literal() string {
	start := p.pos
	inRegex := false

	for ; p.pos < len(p.input); p.pos++ {
		ch := p.input[p.pos]

		if ch == '@' {
			inRegex = !inRegex
			continue
		}
		if !inRegex && (isMarker(ch) || ch == '[' || ch == ']') {
			break
		}
	}

	return p.input[start:p.pos]
}

// filter 解析 [attr=value]
func (p *parser) filter() (Filter, *Error) {
	end := findClosingBracket(p.input, p.pos+1)
	if end == -1 {
		return Filter{}, syntaxError("no closing bracket")
	}

	body := p.input[p.pos+1 : end]
	p.pos = end + 1

	attr, value, ok := strings.Cut(body, "=")
	if !ok {
		return Filter{}, syntaxError(fmt.Sprintf("invalid filter [%s], expected [attr=value]", body))
	}

	switch attr {
	case "index":
		idx, err := strconv.Atoi(value)
		if err != nil {
			return Filter{}, syntaxError(fmt.Sprintf("invalid index %q", value))
		}
		return Index(idx), nil
	case "name":
		return Named(value), nil
	case "key":
		return Key(value), nil
	default:
		return Filter{}, syntaxError(fmt.Sprintf("unknown filter attribute %q, expected index, name or key", attr))
	}
}

// fail 补充错误位置；语法错误的消息带上路径和偏移
func (p *parser) fail(e *Error, offset int) *Error {
	e.Input = p.input
	e.Offset = offset
	if e.Type == ErrorTypeSyntax {
		e.Message = fmt.Sprintf("invalid path %q at offset %d: %s", p.input, offset, e.Message)
	}
	return e
}

// findClosingBracket 查找配对的 ]，忽略 @...@ 内部的 ]
func findClosingBracket(s string, start int) int {
	inRegex := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if ch == '@' {
			inRegex = !inRegex
		}

		if ch == ']' && !inRegex {
			return i
		}
	}

	return -1 // 未找到
}

func isMarker(ch byte) bool {
	return ch == '.' || ch == '/' || ch == '#'
}
