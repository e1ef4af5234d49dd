package path

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/glesirok/treepath/pkg/model"
)

// validator 解析器和构造器共用的片段校验
type validator struct {
	reg *model.Registry
}

// segment 校验单个片段，返回的错误不带 Input/Offset
func (v validator) segment(seg Segment) *Error {
	switch seg.Type {
	case SegmentTypeName:
		if seg.Literal == "" {
			return syntaxError("empty name")
		}
		if seg.Literal == "*" || seg.Literal == "**" {
			return syntaxError(fmt.Sprintf("name %q is reserved for wildcards", seg.Literal))
		}
		if err := checkLiteral(seg.Literal); err != nil {
			return err
		}
		if err := checkPattern(seg.Literal); err != nil {
			return err
		}

	case SegmentTypeType:
		if seg.Literal == "" {
			return syntaxError("empty type")
		}
		if err := checkLiteral(seg.Literal); err != nil {
			return err
		}
		if !v.reg.HasKind(model.Kind(seg.Literal)) {
			return &Error{
				Type:       ErrorTypeKind,
				Message:    fmt.Sprintf("Unable to locate element with type %s in %s", seg.Literal, v.reg.Designator()),
				Suggestion: suggest(seg.Literal, kindNames(v.reg)),
				Cause:      ErrUnknownKind,
			}
		}

	case SegmentTypeRole:
		return v.role(seg)
	}

	return nil
}

func (v validator) role(seg Segment) *Error {
	if seg.Literal == "" {
		return syntaxError("empty role")
	}
	if err := checkLiteral(seg.Literal); err != nil {
		return err
	}

	role := model.Role(seg.Literal)
	allowed, err := v.reg.FilterAllowed(role, seg.Filter.Kind)
	if err != nil {
		return &Error{
			Type:       ErrorTypeRole,
			Message:    fmt.Sprintf("Unable to locate role %s in %s", seg.Literal, v.reg.Designator()),
			Suggestion: suggest(seg.Literal, roleNames(v.reg)),
			Cause:      ErrUnknownRole,
		}
	}
	if !allowed {
		c, _ := v.reg.Cardinality(role)
		return &Error{
			Type:    ErrorTypeFilter,
			Message: fmt.Sprintf("filter %s is not allowed on %s role %s", seg.Filter.Kind, c, seg.Literal),
			Cause:   ErrFilter,
		}
	}

	switch seg.Filter.Kind {
	case model.FilterIndex:
		if seg.Filter.Index < 0 {
			return filterError(fmt.Sprintf("negative index %d on role %s", seg.Filter.Index, seg.Literal))
		}
	case model.FilterName:
		if seg.Filter.Value == "" {
			return filterError(fmt.Sprintf("empty name filter on role %s", seg.Literal))
		}
		if err := checkValue(seg.Filter.Value); err != nil {
			return err
		}
		return checkPattern(seg.Filter.Value)
	case model.FilterKey:
		if seg.Filter.Value == "" {
			return filterError(fmt.Sprintf("empty key filter on role %s", seg.Literal))
		}
		return checkValue(seg.Filter.Value)
	}

	return nil
}

// checkLiteral 字面量必须能被原样解析回来：@ 成对出现，@...@ 之外不含标记字符
func checkLiteral(s string) *Error {
	inRegex := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '@' {
			inRegex = !inRegex
			continue
		}
		if !inRegex && (isMarker(ch) || ch == '[' || ch == ']') {
			return syntaxError(fmt.Sprintf("literal %q contains reserved character '%c'", s, ch))
		}
	}
	if inRegex {
		return syntaxError(fmt.Sprintf("unbalanced '@' in %q", s))
	}
	return nil
}

// checkValue 过滤器的值：@ 成对出现，@...@ 之外不含 ]
func checkValue(s string) *Error {
	inRegex := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '@':
			inRegex = !inRegex
		case ']':
			if !inRegex {
				return syntaxError(fmt.Sprintf("filter value %q contains ']'", s))
			}
		}
	}
	if inRegex {
		return syntaxError(fmt.Sprintf("unbalanced '@' in %q", s))
	}
	return nil
}

// isPattern 判断是否是 @pattern@ 形式的正则
func isPattern(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "@") && strings.HasSuffix(s, "@")
}

// checkPattern 校验正则合法性
func checkPattern(s string) *Error {
	if !isPattern(s) {
		return nil
	}

	pattern := s[1 : len(s)-1]
	if pattern == "" {
		return syntaxError("regex pattern cannot be empty")
	}
	if _, err := regexp2.Compile(pattern, 0); err != nil {
		return syntaxError(fmt.Sprintf("invalid regex pattern %s: %v", pattern, err))
	}
	return nil
}

func syntaxError(msg string) *Error {
	return &Error{Type: ErrorTypeSyntax, Message: msg, Cause: ErrSyntax}
}

func filterError(msg string) *Error {
	return &Error{Type: ErrorTypeFilter, Message: msg, Cause: ErrFilter}
}

func kindNames(reg *model.Registry) []string {
	kinds := reg.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func roleNames(reg *model.Registry) []string {
	roles := reg.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
