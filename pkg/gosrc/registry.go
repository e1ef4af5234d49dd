// Package gosrc 把 go/ast 语法树暴露为可查询的树。
//
// 节点类型取 AST 结构体名（FuncDecl、IfStmt、Ident…），角色取字段名的小驼峰形式
// （body、cond、else、args…）。单个节点字段是 single 角色，节点切片是 list 角色。
// 根节点是 Program，通过 package 角色挂载各个包，包通过 file 角色挂载文件：
//
//	#package[name=main]#file[name=main]#decls[index=0]
//	.main.main.main#body#list[index=0]
//	.**/FuncDecl
package gosrc

import (
	"fmt"
	"go/ast"
	"reflect"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/glesirok/treepath/pkg/model"
)

// Designator 出现在错误信息中的模型名称
const Designator = "go source model"

const (
	KindProgram model.Kind = "Program"
	KindPackage model.Kind = "Package"

	RolePackage model.Role = "package"
	RoleFile    model.Role = "file"
)

// catalogue 参与建树的 AST 节点类型；注释不在其中
var catalogue = []ast.Node{
	// 文件与声明
	&ast.File{}, &ast.GenDecl{}, &ast.FuncDecl{}, &ast.BadDecl{},
	&ast.ImportSpec{}, &ast.ValueSpec{}, &ast.TypeSpec{},
	&ast.Field{}, &ast.FieldList{},

	// 表达式与类型
	&ast.BadExpr{}, &ast.Ident{}, &ast.Ellipsis{}, &ast.BasicLit{},
	&ast.FuncLit{}, &ast.CompositeLit{}, &ast.ParenExpr{}, &ast.SelectorExpr{},
	&ast.IndexExpr{}, &ast.IndexListExpr{}, &ast.SliceExpr{}, &ast.TypeAssertExpr{},
	&ast.CallExpr{}, &ast.StarExpr{}, &ast.UnaryExpr{}, &ast.BinaryExpr{},
	&ast.KeyValueExpr{}, &ast.ArrayType{}, &ast.StructType{}, &ast.FuncType{},
	&ast.InterfaceType{}, &ast.MapType{}, &ast.ChanType{},

	// 语句
	&ast.BadStmt{}, &ast.DeclStmt{}, &ast.EmptyStmt{}, &ast.LabeledStmt{},
	&ast.ExprStmt{}, &ast.SendStmt{}, &ast.IncDecStmt{}, &ast.AssignStmt{},
	&ast.GoStmt{}, &ast.DeferStmt{}, &ast.ReturnStmt{}, &ast.BranchStmt{},
	&ast.BlockStmt{}, &ast.IfStmt{}, &ast.CaseClause{}, &ast.SwitchStmt{},
	&ast.TypeSwitchStmt{}, &ast.CommClause{}, &ast.SelectStmt{}, &ast.ForStmt{},
	&ast.RangeStmt{},
}

// renames 与其它字段同名但基数不同的字段
var renames = map[string]model.Role{
	"CaseClause.Body":    "statement",
	"CommClause.Body":    "statement",
	"ReturnStmt.Results": "result",
}

// skipped 与 Decls 重复或不属于语法结构的字段
var skipped = map[string]bool{
	"File.Imports":    true,
	"File.Unresolved": true,
}

// field 结构体中一个作为子节点的字段
type field struct {
	index int
	role  model.Role
	list  bool
}

// schema 注册表加上每种 AST 类型的子节点字段
type schema struct {
	reg    *model.Registry
	known  map[reflect.Type]bool
	fields map[reflect.Type][]field
}

var loadSchema = sync.OnceValues(buildSchema)

// Registry 返回 Go 源码模型的注册表
func Registry() (*model.Registry, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	return s.reg, nil
}

// MustRegistry 与 Registry 相同，失败时 panic
func MustRegistry() *model.Registry {
	reg, err := Registry()
	if err != nil {
		panic(err)
	}
	return reg
}

func buildSchema() (*schema, error) {
	s := &schema{fields: make(map[reflect.Type][]field)}

	known := make(map[reflect.Type]bool, len(catalogue))
	for _, n := range catalogue {
		known[reflect.TypeOf(n)] = true
	}

	kinds := []model.Kind{KindProgram, KindPackage}
	cardinality := map[model.Role]model.Cardinality{
		RolePackage: model.CardinalitySet,
		RoleFile:    model.CardinalitySet,
	}

	for _, n := range catalogue {
		pt := reflect.TypeOf(n)
		st := pt.Elem()
		kinds = append(kinds, model.Kind(st.Name()))

		for i := 0; i < st.NumField(); i++ {
			sf := st.Field(i)
			qualified := st.Name() + "." + sf.Name
			if skipped[qualified] {
				continue
			}

			list := false
			ft := sf.Type
			if ft.Kind() == reflect.Slice {
				list = true
				ft = ft.Elem()
			}
			if !isNodeType(ft, known) {
				continue
			}

			role, ok := renames[qualified]
			if !ok {
				role = model.Role(lowerCamel(sf.Name))
			}
			c := model.CardinalitySingle
			if list {
				c = model.CardinalityList
			}
			if prev, seen := cardinality[role]; seen && prev != c {
				return nil, fmt.Errorf("role %s of %s is %s, declared %s elsewhere", role, qualified, c, prev)
			}
			cardinality[role] = c

			s.fields[pt] = append(s.fields[pt], field{index: i, role: role, list: list})
		}
	}

	roles := make([]model.RoleDef, 0, len(cardinality))
	for role, c := range cardinality {
		def := model.RoleDef{Role: role, Cardinality: c}
		if c == model.CardinalitySet {
			def.Attribute = "name"
		}
		roles = append(roles, def)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Role < roles[j].Role })

	reg, err := model.NewRegistry(Designator, kinds, roles)
	if err != nil {
		return nil, fmt.Errorf("build go source registry: %w", err)
	}
	s.reg = reg
	s.known = known
	return s, nil
}

var nodeInterface = reflect.TypeOf((*ast.Node)(nil)).Elem()

// isNodeType 接口类型（Expr、Stmt、Decl、Spec）或目录中结构体的指针
func isNodeType(t reflect.Type, known map[reflect.Type]bool) bool {
	switch t.Kind() {
	case reflect.Interface:
		return t.Implements(nodeInterface)
	case reflect.Ptr:
		return known[t]
	}
	return false
}

func lowerCamel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
