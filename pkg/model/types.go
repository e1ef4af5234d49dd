package model

// Kind 节点类型标签，如 "Method"、"If"
type Kind string

// Role 父节点到子节点的关系名，如 "statement"、"body"
type Role string

// Cardinality 角色的基数
type Cardinality int

const (
	CardinalitySingle Cardinality = iota // 0 或 1 个子节点
	CardinalityList                      // 有序列表，按下标访问
	CardinalitySet                       // 无序集合，按名称访问
	CardinalityMap                       // 键值映射，按 key 访问
)

// String 返回基数的文本形式，与关系定义文件中的写法一致
func (c Cardinality) String() string {
	switch c {
	case CardinalitySingle:
		return "single"
	case CardinalityList:
		return "list"
	case CardinalitySet:
		return "set"
	case CardinalityMap:
		return "map"
	default:
		return "unknown"
	}
}

// ParseCardinality 解析 single/list/set/map
func ParseCardinality(s string) (Cardinality, bool) {
	switch s {
	case "single":
		return CardinalitySingle, true
	case "list":
		return CardinalityList, true
	case "set":
		return CardinalitySet, true
	case "map":
		return CardinalityMap, true
	}
	return 0, false
}

// FilterKind 角色片段上的过滤器类型
type FilterKind int

const (
	FilterNone  FilterKind = iota // 无过滤
	FilterIndex                   // [index=N]
	FilterName                    // [name=s]
	FilterKey                     // [key=k]
)

// String 返回过滤器在文本路径中的属性名
func (f FilterKind) String() string {
	switch f {
	case FilterIndex:
		return "index"
	case FilterName:
		return "name"
	case FilterKey:
		return "key"
	default:
		return ""
	}
}

// Node 宿主树中的节点
//
// 节点只能通过角色访问子节点。实现必须是可比较的（通常是指针），
// 查询结果按节点标识去重。查询期间宿主不得并发修改树。
type Node interface {
	Kind() Kind
	// Name 返回名称属性，没有名称时返回空串
	Name() string
	// Parent 根节点返回 nil
	Parent() Node
	// Roles 返回该节点上存在的角色，顺序必须稳定
	Roles() []Role
	// Children 返回某角色下的子节点；角色不存在时返回 nil
	Children(role Role) []Child
}

// Child 角色下的一个子节点及其位置信息
type Child struct {
	Node  Node
	Index int    // List 角色中的位置
	Key   string // Map 角色中的键
}

// Attachment 节点挂在父节点上的角色和位置
type Attachment struct {
	Role  Role
	Index int
	Key   string
}

// Attacher 可选接口：宿主能直接报告节点的挂载位置时实现
type Attacher interface {
	Attachment() (Attachment, bool)
}
