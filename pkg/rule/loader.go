package rule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glesirok/treepath/pkg/engine"
	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/path"
)

// Config 表示查询集文件
type Config struct {
	Queries []*engine.Query `yaml:"queries"`
}

// LoadFromFile 从文件加载查询集，并用注册表校验每条查询
func LoadFromFile(reg *model.Registry, filePath string) ([]*engine.Query, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return Load(reg, data)
}

// Load 解析查询集内容
func Load(reg *model.Registry, data []byte) ([]*engine.Query, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(config.Queries) == 0 {
		return nil, fmt.Errorf("no queries defined")
	}

	// 校验查询
	names := make(map[string]int)
	for i, q := range config.Queries {
		if q == nil {
			return nil, fmt.Errorf("query %d: empty entry", i)
		}
		if err := Validate(reg, q); err != nil {
			return nil, fmt.Errorf("query %d (%s): %w", i, q.Label(), err)
		}
		if q.Name != "" {
			if prev, ok := names[q.Name]; ok {
				return nil, fmt.Errorf("query %d: name %s already used by query %d", i, q.Name, prev)
			}
			names[q.Name] = i
		}
	}

	return config.Queries, nil
}

// Validate 校验查询的合法性，路径按注册表解析
func Validate(reg *model.Registry, q *engine.Query) error {
	if q.Path == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := path.Parse(reg, q.Path); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	if q.Expect != nil && *q.Expect < 0 {
		return fmt.Errorf("expect must not be negative")
	}

	switch q.Action {
	case engine.ActionSelect, engine.ActionCount:
		if q.Context != "" {
			return fmt.Errorf("context is only used by action %s", engine.ActionLocate)
		}

	case engine.ActionLocate:
		if q.Context == "" {
			return fmt.Errorf("context is required for action %s", q.Action)
		}
		if _, err := path.Parse(reg, q.Context); err != nil {
			return fmt.Errorf("context: %w", err)
		}

	default:
		return fmt.Errorf("unknown action: %s", q.Action)
	}

	return nil
}
