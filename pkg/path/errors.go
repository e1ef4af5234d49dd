package path

import (
	"errors"

	"github.com/glesirok/treepath/pkg/model"
)

// Sentinel errors，可用 errors.Is 判断失败类别
var (
	// ErrSyntax 路径文本格式错误
	ErrSyntax = errors.New("path syntax error")

	// ErrUnknownKind 类型片段引用了未注册的节点类型
	ErrUnknownKind = errors.New("unknown element type")

	// ErrUnknownRole 角色片段引用了未注册的角色
	ErrUnknownRole = model.ErrUnknownRole

	// ErrFilter 过滤器与角色基数不兼容
	ErrFilter = errors.New("filter not allowed")

	// ErrNotAncestor 上下文节点不是目标节点的严格祖先
	ErrNotAncestor = errors.New("context is not an ancestor of target")

	// ErrUnaddressable 节点在父节点中无法被唯一地重新选中
	ErrUnaddressable = errors.New("element is not addressable")
)

// ErrorType 错误分类
type ErrorType string

const (
	ErrorTypeSyntax   ErrorType = "syntax"
	ErrorTypeKind     ErrorType = "type"
	ErrorTypeRole     ErrorType = "role"
	ErrorTypeFilter   ErrorType = "filter"
	ErrorTypeAncestry ErrorType = "ancestry"
	ErrorTypeAddress  ErrorType = "address"
)

// Error 路径解析、构造或反向求解失败
type Error struct {
	Type       ErrorType
	Input      string // 出错的路径文本，构造器产生的错误为空
	Offset     int    // Input 中的字节偏移
	Message    string
	Suggestion string // 可选提示，如 "Did you mean 'Method'?"
	Cause      error
}

// Error 只返回 Message，调用方可以精确比较
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回对应的 sentinel error
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsGrammarError 判断是否为解析/构造阶段的错误
func IsGrammarError(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Type {
	case ErrorTypeSyntax, ErrorTypeKind, ErrorTypeRole, ErrorTypeFilter:
		return true
	}
	return false
}

// IsAncestryError 判断是否为反向求解时上下文不是祖先
func IsAncestryError(err error) bool {
	return errors.Is(err, ErrNotAncestor)
}
