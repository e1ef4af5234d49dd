package engine

import (
	"context"
	"fmt"
	"go/token"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/path"
)

// Engine 在一棵树上执行查询
type Engine struct {
	reg       *model.Registry
	navigator *path.Navigator
	locator   *path.Locator
	logger    *slog.Logger
}

// Option 配置 Engine
type Option func(*Engine)

// WithLogger 设置日志，默认 slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(reg *model.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:       reg,
		navigator: path.NewNavigator(reg),
		locator:   path.NewLocator(reg),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry 返回 Engine 使用的注册表
func (e *Engine) Registry() *model.Registry {
	return e.reg
}

// Apply 在 root 上执行查询
//
// 设置了 Expect 且数量不符时，同时返回结果和包装了 ErrUnexpectedCount 的错误。
func (e *Engine) Apply(ctx context.Context, root model.Node, q *Query) (*Result, error) {
	ctx, span := startQuerySpan(ctx, q)
	defer span.End()
	start := time.Now()

	result, err := e.apply(root, q)
	if err == nil && q.Expect != nil && result.Count != *q.Expect {
		err = fmt.Errorf("%w: query %s matched %d, expected %d", ErrUnexpectedCount, q.Label(), result.Count, *q.Expect)
	}

	count := 0
	if result != nil {
		count = result.Count
		setQuerySpanResult(span, count)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	recordQueryMetrics(ctx, q.Action, time.Since(start), count, err == nil)

	e.logger.Debug("query applied",
		"query", q.Label(),
		"action", q.Action,
		"count", count,
		"duration", time.Since(start),
	)
	return result, err
}

func (e *Engine) apply(root model.Node, q *Query) (*Result, error) {
	switch q.Action {
	case ActionSelect:
		return e.selectNodes(root, q)
	case ActionCount:
		return e.count(root, q)
	case ActionLocate:
		return e.locate(root, q)
	default:
		return nil, fmt.Errorf("unknown action: %s", q.Action)
	}
}

// selectNodes 返回匹配节点及其从根节点出发的路径
func (e *Engine) selectNodes(root model.Node, q *Query) (*Result, error) {
	nodes, err := e.find(root, q.Path)
	if err != nil {
		return nil, err
	}

	result := &Result{Query: q.Label(), Action: q.Action, Count: len(nodes)}
	for _, n := range nodes {
		result.Matches = append(result.Matches, e.match(root, n))
	}
	return result, nil
}

// count 只统计数量
func (e *Engine) count(root model.Node, q *Query) (*Result, error) {
	nodes, err := e.find(root, q.Path)
	if err != nil {
		return nil, err
	}
	return &Result{Query: q.Label(), Action: q.Action, Count: len(nodes)}, nil
}

// locate 从 context 匹配到的每个节点出发查找，并反向求出相对路径
func (e *Engine) locate(root model.Node, q *Query) (*Result, error) {
	contexts, err := e.find(root, q.Context)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	if len(contexts) == 0 {
		return nil, fmt.Errorf("context %s matched no nodes", q.Context)
	}

	p, err := path.Parse(e.reg, q.Path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}

	result := &Result{Query: q.Label(), Action: q.Action}
	seen := make(map[model.Node]bool)
	for _, c := range contexts {
		for _, n := range e.navigator.Find(c, p) {
			if seen[n] {
				continue
			}
			seen[n] = true

			m := e.match(root, n)
			if n != c {
				rel, err := e.locator.FromElement(n, c)
				if err != nil {
					e.logger.Debug("relative path unavailable", "node", m.Location, "error", err)
				} else {
					m.Relative = rel.String()
				}
			}
			result.Matches = append(result.Matches, m)
		}
	}
	result.Count = len(result.Matches)
	return result, nil
}

func (e *Engine) find(root model.Node, s string) ([]model.Node, error) {
	p, err := path.Parse(e.reg, s)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	return e.navigator.Find(root, p), nil
}

// match 根节点本身没有 Location；无法寻址的节点只记录类型和名称
func (e *Engine) match(root, n model.Node) Match {
	m := Match{Kind: n.Kind(), Name: n.Name(), Node: n}

	if n != root {
		loc, err := e.locator.FromElement(n, root)
		if err != nil {
			e.logger.Debug("location unavailable", "kind", n.Kind(), "name", n.Name(), "error", err)
		} else {
			m.Location = loc.String()
		}
	}

	if pn, ok := n.(interface{ Position() token.Position }); ok {
		if pos := pn.Position(); pos.IsValid() {
			m.Position = pos.String()
		}
	}
	return m
}
