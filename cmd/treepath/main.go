package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glesirok/treepath/pkg/engine"
	"github.com/glesirok/treepath/pkg/gosrc"
	"github.com/glesirok/treepath/pkg/logging"
	"github.com/glesirok/treepath/pkg/model"
	"github.com/glesirok/treepath/pkg/path"
	"github.com/glesirok/treepath/pkg/processor"
	"github.com/glesirok/treepath/pkg/program"
	"github.com/glesirok/treepath/pkg/telemetry"
	"github.com/glesirok/treepath/pkg/tree"
)

var (
	modelFile string
	logLevel  string
	logFormat string
	trace     bool
	goSource  bool

	queryFile string
	input     string
	output    string
	watch     bool

	from    string
	ctxPath string
	target  string
)

var logger = slog.Default()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treepath",
		Short: "Query typed trees with structural paths",
		Long: `treepath evaluates structural paths against typed trees.
Trees are YAML documents described by a model registry, or Go source
packages when --go is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logging.Config{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&modelFile, "model", "", "Model registry file (defaults to the built-in program model)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&trace, "trace", false, "Print query spans and metrics to stderr")
	pf.BoolVar(&goSource, "go", false, "Input is a Go source directory")

	rootCmd.AddCommand(newRunCmd(), newQueryCmd(), newFormatCmd(), newLocateCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a query file against a tree, a directory or Go packages",
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&queryFile, "config", "c", "", "Query configuration file (required)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file or directory (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Report file (optional, defaults to stdout)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run when the input changes")

	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <path>",
		Short: "Print the nodes a path selects",
		Args:  cobra.ExactArgs(1),
		RunE:  query,
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input tree file or Go directory (required)")
	cmd.Flags().StringVar(&from, "from", "", "Evaluate from the nodes this path selects instead of the root")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <path>",
		Short: "Parse a path and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE:  format,
	}
}

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the path from a context node to each target node",
		Args:  cobra.NoArgs,
		RunE:  locate,
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input tree file or Go directory (required)")
	cmd.Flags().StringVar(&ctxPath, "context", "", "Path selecting the context node (required)")
	cmd.Flags().StringVar(&target, "target", "", "Path selecting the target nodes (required)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("context")
	cmd.MarkFlagRequired("target")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := initTrace(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	reg, err := registry()
	if err != nil {
		return err
	}

	opts := []processor.Option{processor.WithLogger(logger)}
	if goSource {
		opts = append(opts, processor.WithGoSource())
	}
	proc, err := processor.NewProcessor(reg, queryFile, opts...)
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}

	if watch {
		return proc.Watch(ctx, input, processor.DefaultDebounce, func(reports []*processor.Report, err error) {
			if werr := writeReports(cmd.OutOrStdout(), reports); werr != nil {
				logger.Error("write report failed", "error", werr)
			}
			if err != nil {
				logger.Error("run failed", "error", err)
			}
		})
	}

	reports, err := proc.Process(ctx, input)
	if werr := writeReports(cmd.OutOrStdout(), reports); werr != nil {
		return werr
	}
	return err
}

func writeReports(stdout io.Writer, reports []*processor.Report) error {
	if len(reports) == 0 {
		return nil
	}
	if output == "" {
		return processor.WriteReports(stdout, reports)
	}
	if err := processor.WriteReportFile(output, reports); err != nil {
		return err
	}
	logger.Info("report written", "path", output, "reports", len(reports))
	return nil
}

func query(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	shutdown, err := initTrace(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	reg, root, err := loadInput(ctx)
	if err != nil {
		return err
	}

	q := &engine.Query{Action: engine.ActionSelect, Path: args[0]}
	if from != "" {
		q.Action = engine.ActionLocate
		q.Context = from
	}

	res, err := engine.NewEngine(reg, engine.WithLogger(logger)).Apply(ctx, root, q)
	if err != nil {
		return hint(err)
	}

	out := cmd.OutOrStdout()
	for _, m := range res.Matches {
		printMatch(out, m)
	}
	fmt.Fprintf(out, "%d match(es)\n", res.Count)
	return nil
}

func printMatch(w io.Writer, m engine.Match) {
	loc := m.Location
	if m.Relative != "" {
		loc = m.Relative
	}
	if loc == "" {
		loc = "<root>"
	}

	line := fmt.Sprintf("%s\t%s", loc, m.Kind)
	if m.Name != "" {
		line += " " + m.Name
	}
	if m.Position != "" {
		line += "\t" + m.Position
	}
	fmt.Fprintln(w, line)
}

func format(cmd *cobra.Command, args []string) error {
	reg, err := registry()
	if err != nil {
		return err
	}

	p, err := path.Parse(reg, args[0])
	if err != nil {
		return hint(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.String())
	return nil
}

func locate(cmd *cobra.Command, args []string) error {
	reg, root, err := loadInput(cmd.Context())
	if err != nil {
		return err
	}

	cp, err := path.Parse(reg, ctxPath)
	if err != nil {
		return hint(fmt.Errorf("context: %w", err))
	}
	tp, err := path.Parse(reg, target)
	if err != nil {
		return hint(fmt.Errorf("target: %w", err))
	}

	nav := path.NewNavigator(reg)
	contexts := nav.Find(root, cp)
	if len(contexts) != 1 {
		return fmt.Errorf("context %s matched %d nodes, expected exactly one", ctxPath, len(contexts))
	}

	loc := path.NewLocator(reg)
	out := cmd.OutOrStdout()
	var errs []error
	for _, t := range nav.Find(root, tp) {
		rel, err := loc.FromElement(t, contexts[0])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", t.Kind(), t.Name(), err))
			continue
		}
		fmt.Fprintln(out, rel.String())
	}
	return errors.Join(errs...)
}

// registry --go 使用 Go 源码模型，--model 从文件加载，否则使用内置 program 模型
func registry() (*model.Registry, error) {
	switch {
	case goSource:
		return gosrc.Registry()
	case modelFile != "":
		return model.LoadRegistryFile(modelFile)
	default:
		return program.Registry()
	}
}

func loadInput(ctx context.Context) (*model.Registry, model.Node, error) {
	reg, err := registry()
	if err != nil {
		return nil, nil, err
	}

	if goSource {
		root, err := gosrc.Load(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return reg, root, nil
	}

	root, err := tree.DecodeFile(reg, input)
	if err != nil {
		return nil, nil, fmt.Errorf("decode tree: %w", err)
	}
	return reg, root, nil
}

// hint 在语法错误后附上拼写建议
func hint(err error) error {
	var pe *path.Error
	if errors.As(err, &pe) && pe.Suggestion != "" {
		return fmt.Errorf("%w\n  hint: %s", err, pe.Suggestion)
	}
	return err
}

func initTrace(ctx context.Context) (func(), error) {
	if !trace {
		return func() {}, nil
	}
	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}, nil
}
