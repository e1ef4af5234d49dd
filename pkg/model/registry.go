package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownRole 角色未在注册表中定义
var ErrUnknownRole = errors.New("unknown role")

// RoleDef 一条关系定义
type RoleDef struct {
	Role        Role
	Cardinality Cardinality
	// Attribute Set/Map 角色用于过滤的属性名（name 或 key），仅作说明
	Attribute string
}

// Registry 角色注册表：角色基数、已知节点类型和模型名称
//
// 构造后只读，可被多个 goroutine 并发使用。
type Registry struct {
	designator string
	kinds      map[Kind]struct{}
	roles      map[Role]RoleDef
}

// NewRegistry 根据宿主模型的关系定义构造注册表
func NewRegistry(designator string, kinds []Kind, roles []RoleDef) (*Registry, error) {
	if designator == "" {
		return nil, fmt.Errorf("model designator is required")
	}

	r := &Registry{
		designator: designator,
		kinds:      make(map[Kind]struct{}, len(kinds)),
		roles:      make(map[Role]RoleDef, len(roles)),
	}

	for _, k := range kinds {
		if k == "" {
			return nil, fmt.Errorf("empty kind")
		}
		if _, dup := r.kinds[k]; dup {
			return nil, fmt.Errorf("duplicate kind %s", k)
		}
		r.kinds[k] = struct{}{}
	}

	for _, def := range roles {
		if def.Role == "" {
			return nil, fmt.Errorf("empty role")
		}
		if _, dup := r.roles[def.Role]; dup {
			return nil, fmt.Errorf("duplicate role %s", def.Role)
		}
		if def.Cardinality < CardinalitySingle || def.Cardinality > CardinalityMap {
			return nil, fmt.Errorf("role %s: invalid cardinality %d", def.Role, def.Cardinality)
		}
		r.roles[def.Role] = def
	}

	return r, nil
}

// Designator 模型名称，出现在错误信息中
func (r *Registry) Designator() string {
	return r.designator
}

// HasKind 判断类型标签是否已注册
func (r *Registry) HasKind(k Kind) bool {
	_, ok := r.kinds[k]
	return ok
}

// Role 返回角色定义
func (r *Registry) Role(role Role) (RoleDef, bool) {
	def, ok := r.roles[role]
	return def, ok
}

// Cardinality 返回角色基数
func (r *Registry) Cardinality(role Role) (Cardinality, error) {
	def, ok := r.roles[role]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return def.Cardinality, nil
}

// FilterAllowed 判断角色是否接受某种过滤器
//
// index 只用于 List，key 只用于 Map，name 可用于任何多值角色。
func (r *Registry) FilterAllowed(role Role, f FilterKind) (bool, error) {
	c, err := r.Cardinality(role)
	if err != nil {
		return false, err
	}

	switch f {
	case FilterNone:
		return true, nil
	case FilterIndex:
		return c == CardinalityList, nil
	case FilterKey:
		return c == CardinalityMap, nil
	case FilterName:
		return c != CardinalitySingle, nil
	}
	return false, nil
}

// Kinds 返回排序后的全部类型标签
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roles 返回排序后的全部角色
func (r *Registry) Roles() []Role {
	out := make([]Role, 0, len(r.roles))
	for role := range r.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
