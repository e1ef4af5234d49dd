package tree

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glesirok/treepath/pkg/model"
)

// DecodeFile 读取 YAML 树文档
func DecodeFile(reg *model.Registry, filePath string) (*Element, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	root, err := Decode(reg, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return root, nil
}

// Decode 解析 YAML 树文档并按注册表校验
//
// 文档格式：
//
//	kind: Method
//	name: foo
//	roles:
//	  body:                # single: 一个节点
//	    kind: Block
//	  parameter:           # list/set: 节点序列
//	    - kind: Parameter
//	      name: i
//	  value:               # map: key -> 节点，保持文档顺序
//	    value:
//	      kind: Literal
func Decode(reg *model.Registry, data []byte) (*Element, error) {
	// 移除 UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	d := &decoder{reg: reg}
	return d.element(doc.Content[0])
}

type decoder struct {
	reg *model.Registry
}

// element 解析一个节点映射
func (d *decoder) element(n *yaml.Node) (*Element, error) {
	if n.Kind == yaml.AliasNode {
		return nil, fmt.Errorf("line %d: aliases are not supported, a node has exactly one parent", n.Line)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping node for element", n.Line)
	}

	var (
		kind  string
		name  string
		roles *yaml.Node
	)

	// MappingNode 的 Content 是 [key1, value1, key2, value2, ...]
	for i := 0; i < len(n.Content); i += 2 {
		keyNode := n.Content[i]
		valueNode := n.Content[i+1]

		switch keyNode.Value {
		case "kind":
			kind = valueNode.Value
		case "name":
			name = valueNode.Value
		case "roles":
			roles = valueNode
		default:
			return nil, fmt.Errorf("line %d: unknown field '%s'", keyNode.Line, keyNode.Value)
		}
	}

	if kind == "" {
		return nil, fmt.Errorf("line %d: kind is required", n.Line)
	}
	if !d.reg.HasKind(model.Kind(kind)) {
		return nil, fmt.Errorf("line %d: unknown kind %s in %s", n.Line, kind, d.reg.Designator())
	}

	e := New(model.Kind(kind), name)
	if roles == nil {
		return e, nil
	}
	if roles.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: roles must be a mapping", roles.Line)
	}

	for i := 0; i < len(roles.Content); i += 2 {
		if err := d.role(e, roles.Content[i], roles.Content[i+1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// role 按角色基数解析子节点
func (d *decoder) role(parent *Element, keyNode, valueNode *yaml.Node) error {
	role := model.Role(keyNode.Value)
	c, err := d.reg.Cardinality(role)
	if err != nil {
		return fmt.Errorf("line %d: %w", keyNode.Line, err)
	}

	switch c {
	case model.CardinalitySingle:
		if valueNode.Tag == "!!null" {
			return nil
		}
		child, err := d.element(valueNode)
		if err != nil {
			return err
		}
		parent.Set(role, child)

	case model.CardinalityList, model.CardinalitySet:
		if valueNode.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: role %s is a %s, expected sequence", valueNode.Line, role, c)
		}
		for _, item := range valueNode.Content {
			child, err := d.element(item)
			if err != nil {
				return err
			}
			if c == model.CardinalityList {
				parent.Append(role, child)
			} else {
				parent.Add(role, child)
			}
		}

	case model.CardinalityMap:
		if valueNode.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: role %s is a map, expected mapping", valueNode.Line, role)
		}
		seen := make(map[string]bool, len(valueNode.Content)/2)
		for i := 0; i < len(valueNode.Content); i += 2 {
			k := valueNode.Content[i]
			if seen[k.Value] {
				return fmt.Errorf("line %d: duplicate key '%s' in role %s", k.Line, k.Value, role)
			}
			seen[k.Value] = true

			child, err := d.element(valueNode.Content[i+1])
			if err != nil {
				return err
			}
			parent.Put(role, k.Value, child)
		}
	}

	return nil
}
