package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition 关系定义文件
//
//	model: program model
//	kinds: [Package, Class, Method]
//	roles:
//	  - name: statement
//	    cardinality: list
type Definition struct {
	Model string           `yaml:"model"`
	Kinds []string         `yaml:"kinds"`
	Roles []RoleDefinition `yaml:"roles"`
}

// RoleDefinition 关系定义文件中的一条角色
type RoleDefinition struct {
	Name        string `yaml:"name"`
	Cardinality string `yaml:"cardinality"`
	Attribute   string `yaml:"attribute,omitempty"`
}

// LoadRegistryFile 从文件加载注册表
func LoadRegistryFile(filePath string) (*Registry, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open model definition: %w", err)
	}
	defer f.Close()

	return LoadRegistry(f)
}

// LoadRegistry 从 YAML 读取关系定义并构造注册表
func LoadRegistry(r io.Reader) (*Registry, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("unmarshal model definition: %w", err)
	}

	return def.Registry()
}

// Registry 校验定义并构造注册表
func (d *Definition) Registry() (*Registry, error) {
	kinds := make([]Kind, 0, len(d.Kinds))
	for _, k := range d.Kinds {
		kinds = append(kinds, Kind(k))
	}

	roles := make([]RoleDef, 0, len(d.Roles))
	for i, rd := range d.Roles {
		c, ok := ParseCardinality(rd.Cardinality)
		if !ok {
			return nil, fmt.Errorf("role %d (%s): unknown cardinality %q", i, rd.Name, rd.Cardinality)
		}
		roles = append(roles, RoleDef{
			Role:        Role(rd.Name),
			Cardinality: c,
			Attribute:   rd.Attribute,
		})
	}

	return NewRegistry(d.Model, kinds, roles)
}
