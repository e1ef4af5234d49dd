package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/glesirok/treepath/pkg/engine"
	"github.com/glesirok/treepath/pkg/gosrc"
	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/rule"
	"github.com/glesirok/treepath/pkg/tree"
)

// Report 一次运行在一个输入上的结果
type Report struct {
	RunID   string           `yaml:"run_id"`
	Input   string           `yaml:"input"`
	Results []*engine.Result `yaml:"results"`
}

// Processor 对树文件、目录或 Go 包批量执行查询集
type Processor struct {
	reg      *model.Registry
	queries  []*engine.Query
	engine   *engine.Engine
	logger   *slog.Logger
	goSource bool
}

// Option 配置 Processor
type Option func(*Processor)

// WithLogger 设置日志，同时传给 Engine
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithGoSource 输入是 Go 源码目录，按 gosrc 模型建树
func WithGoSource() Option {
	return func(p *Processor) {
		p.goSource = true
	}
}

// NewProcessor 创建处理器，查询集按 reg 校验
func NewProcessor(reg *model.Registry, queryFile string, opts ...Option) (*Processor, error) {
	queries, err := rule.LoadFromFile(reg, queryFile)
	if err != nil {
		return nil, fmt.Errorf("load queries: %w", err)
	}

	return New(reg, queries, opts...), nil
}

// New 使用已加载的查询创建处理器
func New(reg *model.Registry, queries []*engine.Query, opts ...Option) *Processor {
	p := &Processor{
		reg:     reg,
		queries: queries,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.engine = engine.NewEngine(reg, engine.WithLogger(p.logger))
	return p
}

// Process 处理输入：Go 源码模式下加载整个目录，否则按文件或目录处理树文件
func (p *Processor) Process(ctx context.Context, input string) ([]*Report, error) {
	if p.goSource {
		r, err := p.ProcessPackages(ctx, input)
		if r == nil {
			return nil, err
		}
		return []*Report{r}, err
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return p.ProcessDirectory(ctx, input)
	}

	r, err := p.ProcessFile(ctx, input)
	if r == nil {
		return nil, err
	}
	return []*Report{r}, err
}

// ProcessFile 处理单个树文件
func (p *Processor) ProcessFile(ctx context.Context, inputPath string) (*Report, error) {
	root, err := tree.DecodeFile(p.reg, inputPath)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return p.Run(ctx, root, inputPath)
}

// ProcessPackages 加载 dir 下的 Go 包并执行查询
func (p *Processor) ProcessPackages(ctx context.Context, dir string) (*Report, error) {
	root, err := gosrc.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, root, dir)
}

// ProcessDirectory 处理目录下的所有 .yaml 和 .yml 树文件
//
// 期望数量不符不会中断遍历，所有不符在最后一起返回。
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir string) ([]*Report, error) {
	var (
		reports    []*Report
		mismatches []error
	)

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// 只处理 .yaml 和 .yml 文件
		if info.IsDir() || !isTreeFile(path) {
			return nil
		}

		p.logger.Info("processing", "path", path)
		r, err := p.ProcessFile(ctx, path)
		if r != nil {
			reports = append(reports, r)
		}
		if err != nil {
			if errors.Is(err, engine.ErrUnexpectedCount) {
				mismatches = append(mismatches, err)
				return nil
			}
			return fmt.Errorf("process %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return reports, err
	}

	return reports, errors.Join(mismatches...)
}

// Run 在一棵树上执行全部查询
//
// 路径错误立即返回；期望数量不符的查询仍然写入报告，错误合并后返回。
func (p *Processor) Run(ctx context.Context, root model.Node, input string) (*Report, error) {
	report := &Report{
		RunID: uuid.NewString(),
		Input: input,
	}

	var mismatches []error
	for i, q := range p.queries {
		res, err := p.engine.Apply(ctx, root, q)
		if res != nil {
			report.Results = append(report.Results, res)
		}
		if err != nil {
			if errors.Is(err, engine.ErrUnexpectedCount) {
				p.logger.Warn("expectation failed", "input", input, "query", q.Label(), "error", err)
				mismatches = append(mismatches, fmt.Errorf("%s: %w", input, err))
				continue
			}
			return nil, fmt.Errorf("apply query %d: %w", i, err)
		}
	}

	p.logger.Info("queries applied",
		"run_id", report.RunID,
		"input", input,
		"queries", len(p.queries),
		"failed", len(mismatches),
	)
	return report, errors.Join(mismatches...)
}

// WriteReports 以 YAML 写出报告，多个报告写成多个文档
func WriteReports(w io.Writer, reports []*Report) error {
	// 序列化 YAML（保持2空格缩进）
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	for _, r := range reports {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteReportFile 写入文件，目录不存在时创建
func WriteReportFile(outputPath string, reports []*Report) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	return WriteReports(f, reports)
}

func isTreeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
