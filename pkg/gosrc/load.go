package gosrc

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/glesirok/treepath/pkg/model"
)

// FromFiles 把同一个包的文件组装成以 Program 为根的树
func FromFiles(fset *token.FileSet, pkgName string, files []*ast.File) (*Node, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	root := newNode(KindProgram, "")
	b := &builder{s: s, fset: fset}
	root.attachChild(RolePackage, b.pkg(pkgName, files), false)
	return root, nil
}

// FromPackages 用 go/packages 的加载结果建树，包按导入路径排序
func FromPackages(pkgs []*packages.Package) (*Node, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	sorted := make([]*packages.Package, len(pkgs))
	copy(sorted, pkgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PkgPath < sorted[j].PkgPath })

	root := newNode(KindProgram, "")
	for _, p := range sorted {
		if len(p.Syntax) == 0 {
			if len(p.Errors) > 0 {
				return nil, fmt.Errorf("load package %s: %s", p.PkgPath, p.Errors[0].Msg)
			}
			continue
		}

		b := &builder{s: s, fset: p.Fset}
		root.attachChild(RolePackage, b.pkg(p.Name, p.Syntax), false)
	}
	return root, nil
}

// Load 加载 dir 下匹配 patterns 的包（默认 ./...）并建树
//
// 类型检查错误不影响建树，只有无法解析的包才返回错误。
func Load(ctx context.Context, dir string, patterns ...string) (*Node, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedCompiledGoFiles | packages.NeedName,
		Dir:     dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages in %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %s in %s", strings.Join(patterns, " "), dir)
	}

	return FromPackages(pkgs)
}

type builder struct {
	s    *schema
	fset *token.FileSet
}

func (b *builder) pkg(name string, files []*ast.File) *Node {
	pkg := newNode(KindPackage, name)
	for _, f := range files {
		if f == nil {
			continue
		}
		file := b.node(f)
		file.name = fileName(b.fset, f)
		pkg.attachChild(RoleFile, file, false)
	}
	return pkg
}

// node 按 schema 中记录的字段递归建树
func (b *builder) node(n ast.Node) *Node {
	v := reflect.ValueOf(n)
	out := newNode(model.Kind(v.Elem().Type().Name()), nameOf(n))
	out.ast = n
	if b.fset != nil {
		out.pos = b.fset.Position(n.Pos())
	}

	for _, f := range b.s.fields[v.Type()] {
		fv := v.Elem().Field(f.index)
		if !f.list {
			if c := b.child(fv); c != nil {
				out.attachChild(f.role, c, false)
			}
			continue
		}
		for i := 0; i < fv.Len(); i++ {
			if c := b.child(fv.Index(i)); c != nil {
				out.attachChild(f.role, c, true)
			}
		}
	}
	return out
}

// child 空字段和目录外的类型返回 nil
func (b *builder) child(v reflect.Value) *Node {
	if v.IsNil() {
		return nil
	}
	n, ok := v.Interface().(ast.Node)
	if !ok {
		return nil
	}
	rv := reflect.ValueOf(n)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || !b.s.known[rv.Type()] {
		return nil
	}
	return b.node(n)
}

// fileName 文件名去掉目录和 .go 后缀
func fileName(fset *token.FileSet, f *ast.File) string {
	if fset != nil {
		if tf := fset.File(f.Pos()); tf != nil && tf.Name() != "" {
			return strings.TrimSuffix(filepath.Base(tf.Name()), ".go")
		}
	}
	return identName(f.Name)
}
