// Package program 内置的示例程序模型：包、类型、成员、语句和表达式。
//
// 关系定义嵌入在 program.yaml 中，注册表在首次使用时构造一次。
package program

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/glesirok/treepath/pkg/model"
)

//go:embed program.yaml
var definition []byte

var registry = sync.OnceValues(func() (*model.Registry, error) {
	return model.LoadRegistry(bytes.NewReader(definition))
})

// Registry 返回程序模型的注册表
func Registry() (*model.Registry, error) {
	return registry()
}

// MustRegistry 与 Registry 相同，失败时 panic；嵌入的定义是固定的
func MustRegistry() *model.Registry {
	reg, err := registry()
	if err != nil {
		panic(err)
	}
	return reg
}

// 节点类型
const (
	KindPackage         model.Kind = "Package"
	KindClass           model.Kind = "Class"
	KindInterface       model.Kind = "Interface"
	KindEnum            model.Kind = "Enum"
	KindField           model.Kind = "Field"
	KindMethod          model.Kind = "Method"
	KindConstructor     model.Kind = "Constructor"
	KindParameter       model.Kind = "Parameter"
	KindBlock           model.Kind = "Block"
	KindIf              model.Kind = "If"
	KindWhile           model.Kind = "While"
	KindFor             model.Kind = "For"
	KindReturn          model.Kind = "Return"
	KindThrow           model.Kind = "Throw"
	KindInvocation      model.Kind = "Invocation"
	KindAssignment      model.Kind = "Assignment"
	KindLocalVariable   model.Kind = "LocalVariable"
	KindLiteral         model.Kind = "Literal"
	KindVariableRead    model.Kind = "VariableRead"
	KindVariableWrite   model.Kind = "VariableWrite"
	KindFieldRead       model.Kind = "FieldRead"
	KindBinaryOperator  model.Kind = "BinaryOperator"
	KindUnaryOperator   model.Kind = "UnaryOperator"
	KindConstructorCall model.Kind = "ConstructorCall"
	KindAnnotation      model.Kind = "Annotation"
	KindTypeReference   model.Kind = "TypeReference"
)

// 角色
const (
	RoleSubPackage        model.Role = "subPackage"
	RoleType              model.Role = "type"
	RoleTypeMember        model.Role = "typeMember"
	RoleSuperType         model.Role = "superType"
	RoleParameter         model.Role = "parameter"
	RoleReturnType        model.Role = "returnType"
	RoleBody              model.Role = "body"
	RoleStatement         model.Role = "statement"
	RoleDefaultExpression model.Role = "defaultExpression"
	RoleCondition         model.Role = "condition"
	RoleThen              model.Role = "then"
	RoleElse              model.Role = "else"
	RoleExpression        model.Role = "expression"
	RoleTarget            model.Role = "target"
	RoleArgument          model.Role = "argument"
	RoleAssigned          model.Role = "assigned"
	RoleAssignment        model.Role = "assignment"
	RoleLeftOperand       model.Role = "leftOperand"
	RoleRightOperand      model.Role = "rightOperand"
	RoleOperand           model.Role = "operand"
	RoleAnnotation        model.Role = "annotation"
	RoleValue             model.Role = "value"
	RoleTypeReference     model.Role = "typeReference"
)
