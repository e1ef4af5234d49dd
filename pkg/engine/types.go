package engine

import (
	"errors"

	"github.com/glesirok/treepath/pkg/model"
)

// ActionType 定义查询类型
type ActionType string

const (
	ActionSelect ActionType = "select" // 返回匹配节点
	ActionCount  ActionType = "count"  // 只返回数量
	ActionLocate ActionType = "locate" // 在 context 下查找，并给出相对 context 的路径
)

// ErrUnexpectedCount 匹配数量与 expect 不符
var ErrUnexpectedCount = errors.New("unexpected match count")

// Query 表示一条查询
type Query struct {
	Name    string     `yaml:"name"`
	Action  ActionType `yaml:"action"`
	Path    string     `yaml:"path"`
	Context string     `yaml:"context,omitempty"` // 用于 locate
	Expect  *int       `yaml:"expect,omitempty"`
}

// Label 报告中使用的查询名称，未命名时使用路径
func (q *Query) Label() string {
	if q.Name != "" {
		return q.Name
	}
	return q.Path
}

// Match 一个匹配节点
type Match struct {
	Kind     model.Kind `yaml:"kind"`
	Name     string     `yaml:"name,omitempty"`
	Location string     `yaml:"location,omitempty"` // 从根节点出发的规范路径
	Relative string     `yaml:"relative,omitempty"` // locate: 从 context 出发的路径
	Position string     `yaml:"position,omitempty"` // 源码位置 file:line:col

	Node model.Node `yaml:"-"`
}

// Result 一条查询的结果
type Result struct {
	Query   string     `yaml:"query"`
	Action  ActionType `yaml:"action"`
	Count   int        `yaml:"count"`
	Matches []Match    `yaml:"matches,omitempty"`
}
