package asp

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
)

// An interpreter holds the process-wide state shared across every project's
// build script evaluation: the registered builtins and the generic
// string/dict member-function tables. One interpreter is created per
// process and its root scope (with all builtins bound) is the parent of
// every project's module scope.
type interpreter struct {
	globals                     *scope
	stringMethods, dictMethods map[string]*pyFunc
}

// newInterpreter creates an interpreter with every native builtin
// registered, ready to spawn fresh module scopes for project loading.
func newInterpreter() *interpreter {
	i := &interpreter{
		stringMethods: map[string]*pyFunc{},
		dictMethods:   map[string]*pyFunc{},
	}
	root := &scope{interpreter: i, filename: "<builtins>", locals: make(pyDict)}
	root.LoadSingletons()
	i.globals = root
	registerBuiltins(root)
	registerStringMethods(i)
	registerDictMethods(i)
	return i
}

// NewModuleScope creates the fresh top-level scope for one project's
// build.catapult, as a child of the shared builtins scope. dir is the
// project's directory (used to resolve relative source/include paths), p
// is the project the script's targets are appended to, and g is the
// shared graph every constructed target is registered with.
func (i *interpreter) NewModuleScope(filename, dir string, p *core.Project, g *graph.Graph) *scope {
	s := i.globals.newScope(filename, 8)
	s.dir = dir
	s.project = p
	s.g = g
	return s
}

// interpretModule runs a module's statements to completion, recovering any
// panic raised during evaluation into a returned error. This is the single
// entry point the project loader uses to evaluate a build.catapult. On
// success the module's scope is frozen: every target-constructing builtin
// has already run by the time this returns, so nothing legitimate is left
// to assign into the module's globals, and freezing catches build scripts
// that try to mutate their own state from a callback registered elsewhere.
func interpretModule(s *scope, statements []*Statement) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	s.interpretStatements(statements)
	s.Freeze()
	return nil
}

// toError normalizes a recovered panic value into an error.
func toError(r interface{}) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("%v", r)
}

// A scope contains all the information about a lexical scope: its own
// variable bindings and a link to its parent for name resolution.
type scope struct {
	interpreter *interpreter
	filename    string
	parent      *scope
	locals      pyDict
	// frozen is set once a module's top-level statements have finished
	// executing; further Set calls against a frozen scope panic with a
	// ScriptEval-shaped message, since this module is the scope's single
	// source of its own frozen bindings.
	frozen bool

	// dir, project and g are set once on a project's module scope (by the
	// loader, via NewModuleScope) and inherited by every child scope
	// created underneath it; they give the five host builtins (builtins.go)
	// the script directory to resolve paths against and the project/graph
	// to register the constructed Target with.
	dir     string
	project *core.Project
	g       *graph.Graph
}

// NewScope creates a new child scope of this one. hint sizes the new set
// of locals.
func (s *scope) NewScope(filename string, hint int) *scope {
	return s.newScope(filename, hint)
}

func (s *scope) newScope(filename string, hint int) *scope {
	return &scope{
		interpreter: s.interpreter,
		filename:    filename,
		parent:      s,
		locals:      make(pyDict, hint),
		dir:         s.dir,
		project:     s.project,
		g:           s.g,
	}
}

// Error emits an error that stops further interpretation.
// For convenience it is declared to return a pyObject but it never actually returns.
// The panic value is a *caterr.ScriptEval with no location yet filled in;
// AddStackFrame fills it in from the innermost statement/expression
// position as the panic unwinds through interpretStatements/interpretExpression.
func (s *scope) Error(msg string, args ...interface{}) pyObject {
	panic(&caterr.ScriptEval{Message: fmt.Sprintf(msg, args...)})
}

// Assert emits an error that stops further interpretation if the given condition is false.
func (s *scope) Assert(condition bool, msg string, args ...interface{}) {
	if !condition {
		s.Error(msg, args...)
	}
}

// NAssert is the inverse of Assert, it emits an error if the given condition is true.
func (s *scope) NAssert(condition bool, msg string, args ...interface{}) {
	if condition {
		s.Error(msg, args...)
	}
}

// Lookup looks up a variable name in this scope, walking back up its ancestor scopes as needed.
// It panics if the variable is not defined.
func (s *scope) Lookup(name string) pyObject {
	if obj, present := s.locals[name]; present {
		return obj
	} else if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return s.Error("name '%s' is not defined", name)
}

// LocalLookup looks up a variable name in the current scope only.
func (s *scope) LocalLookup(name string) pyObject {
	return s.locals[name]
}

// Set sets the given variable in this scope.
func (s *scope) Set(name string, value pyObject) {
	if s.frozen {
		s.Error("cannot assign '%s': module globals are frozen after evaluation", name)
	}
	s.locals[name] = value
}

// SetAll sets all contents of the given dict in this scope.
func (s *scope) SetAll(d pyDict) {
	for k, v := range d {
		s.locals[k] = v
	}
}

// Freeze freezes the contents of this scope, preventing mutable objects
// from being changed, and marks the scope itself closed to further
// assignment. It returns the newly frozen set of locals.
func (s *scope) Freeze() pyDict {
	for k, v := range s.locals {
		if f, ok := v.(freezable); ok {
			s.locals[k] = f.Freeze()
		}
	}
	s.frozen = true
	return s.locals
}

// LoadSingletons loads the global builtin singletons into this scope.
func (s *scope) LoadSingletons() {
	s.locals["True"] = True
	s.locals["False"] = False
	s.locals["None"] = None
}

// interpretStatements interprets a series of statements in this scope.
// Note that the return value is only non-nil if a return statement was
// encountered; it is not implicitly the result of the last statement.
func (s *scope) interpretStatements(statements []*Statement) pyObject {
	var stmt *Statement
	defer func() {
		if r := recover(); r != nil && stmt != nil {
			panic(AddStackFrame(stmt.Pos, r))
		} else if r != nil {
			panic(r)
		}
	}()
	for _, stmt = range statements {
		if stmt.FuncDef != nil {
			s.Set(stmt.FuncDef.Name, newPyFunc(s, stmt.FuncDef))
		} else if stmt.If != nil {
			if ret := s.interpretIf(stmt.If); ret != nil {
				return ret
			}
		} else if stmt.For != nil {
			if ret := s.interpretFor(stmt.For); ret != nil {
				return ret
			}
		} else if stmt.Return != nil {
			if len(stmt.Return.Values) == 0 {
				return None
			} else if len(stmt.Return.Values) == 1 {
				return s.interpretExpression(stmt.Return.Values[0])
			}
			return pyList(s.evaluateExpressions(stmt.Return.Values))
		} else if stmt.Ident != nil {
			s.interpretIdentStatement(stmt.Ident)
		} else if stmt.Assert != nil {
			if !s.interpretExpression(stmt.Assert.Expr).IsTruthy() {
				if stmt.Assert.Message == nil {
					s.Error("assertion failed")
				} else {
					s.Error("%s", s.interpretExpression(stmt.Assert.Message))
				}
			}
		} else if stmt.Raise != nil {
			s.Error("%s", s.interpretExpression(stmt.Raise))
		} else if stmt.Literal != nil {
			s.interpretExpression(stmt.Literal)
		} else if stmt.Continue {
			return continueIteration
		} else if stmt.Pass {
			continue
		} else {
			s.Error("unknown statement")
		}
	}
	return nil
}

func (s *scope) interpretIf(stmt *IfStatement) pyObject {
	if s.interpretExpression(&stmt.Condition).IsTruthy() {
		return s.interpretStatements(stmt.Statements)
	}
	for _, elif := range stmt.Elif {
		if s.interpretExpression(&elif.Condition).IsTruthy() {
			return s.interpretStatements(elif.Statements)
		}
	}
	return s.interpretStatements(stmt.ElseStatements)
}

func (s *scope) interpretFor(stmt *ForStatement) pyObject {
	it := s.iterable(&stmt.Expr)
	for idx := 0; idx < it.Len(); idx++ {
		s.unpackNames(stmt.Names, it.Item(idx))
		if ret := s.interpretStatements(stmt.Statements); ret != nil {
			if ret == continueIteration {
				continue
			}
			return ret
		}
	}
	return nil
}

func (s *scope) interpretExpression(expr *Expression) pyObject {
	if expr.optimised != nil {
		if expr.optimised.Constant != nil {
			return expr.optimised.Constant
		} else if expr.optimised.Local != "" {
			return s.Lookup(expr.optimised.Local)
		}
		return s.interpretJoin(stringLiteral(expr.optimised.Join.Base), expr.optimised.Join.List)
	}
	defer func() {
		if r := recover(); r != nil {
			panic(AddStackFrame(expr.Pos, r))
		}
	}()
	if expr.If != nil && !s.interpretExpression(expr.If.Condition).IsTruthy() {
		return s.interpretExpression(expr.If.Else)
	}
	var obj pyObject
	if expr.Val != nil {
		obj = s.interpretValueExpression(expr.Val)
	}
	if len(expr.Op) > 0 {
		obj = s.interpretOps(obj, expr.Op)
	}
	return obj
}

func (s *scope) interpretOps(obj pyObject, ops []OpExpression) pyObject {
	if len(ops) == 1 {
		return s.interpretOp(obj, ops[0])
	}
	if ops[0].Op.Precedence() >= ops[1].Op.Precedence() {
		return s.interpretOps(s.interpretOp(obj, ops[0]), ops[1:])
	}
	if ops[0].Op.Lazy() && obj.IsTruthy() != (ops[0].Op == And) {
		return obj
	} else if ops[0].Expr == nil {
		return s.interpretOp(s.interpretOps(obj, ops[1:]), ops[0])
	}
	nobj := s.interpretOps(s.interpretExpression(ops[0].Expr), ops[1:])
	return s.interpretOp(obj, OpExpression{
		Op:   ops[0].Op,
		Expr: &Expression{optimised: &optimisedExpression{Constant: nobj}},
	})
}

func (s *scope) interpretOp(obj pyObject, op OpExpression) pyObject {
	switch op.Op {
	case And, Or:
		if obj.IsTruthy() == (op.Op == And) {
			obj = s.interpretExpression(op.Expr)
		}
		return obj
	case Not:
		return s.negate(obj)
	case Equal:
		return newPyBool(reflect.DeepEqual(obj, s.interpretExpression(op.Expr)))
	case NotEqual:
		return newPyBool(!reflect.DeepEqual(obj, s.interpretExpression(op.Expr)))
	case Is:
		return s.interpretIs(obj, op)
	case IsNot:
		return s.negate(s.interpretIs(obj, op))
	case In, NotIn:
		// The implementation of "in" is defined by the right-hand side, not the left.
		return s.operator(op.Op, s.interpretExpression(op.Expr), obj)
	case Negate:
		i, ok := obj.(pyInt)
		s.Assert(ok, "Unary - can only be applied to an integer")
		return newPyInt(-int(i))
	default:
		return s.operator(op.Op, obj, s.interpretExpression(op.Expr))
	}
}

func (s *scope) operator(op Operator, obj, operand pyObject) pyObject {
	return obj.Operator(op, operand)
}

func (s *scope) interpretJoin(base string, list *List) pyObject {
	var b strings.Builder
	if list.Comprehension == nil {
		for i, x := range list.Values {
			if i != 0 {
				b.WriteString(base)
			}
			y := s.interpretExpression(x)
			z, ok := y.(pyString)
			s.Assert(ok, "invalid expression of type %s to str.join (must be a string)", y.Type())
			b.WriteString(string(z))
		}
		return pyString(b.String())
	}
	cs := s.NewScope(s.filename, 0)
	it := s.iterable(list.Comprehension.Expr)
	first := true
	cs.evaluateComprehension(it, list.Comprehension, func(li pyObject) {
		if first {
			first = false
		} else {
			b.WriteString(base)
		}
		x := cs.interpretExpression(list.Values[0])
		y, ok := x.(pyString)
		cs.Assert(ok, "invalid expression of type %s to str.join (must be a string)", x.Type())
		b.WriteString(string(y))
	})
	return pyString(b.String())
}

func (s *scope) interpretIs(obj pyObject, op OpExpression) pyObject {
	operand := s.interpretExpression(op.Expr)
	switch tobj := obj.(type) {
	case pyNone:
		_, ok := operand.(pyNone)
		return newPyBool(ok)
	case pyBool:
		b, ok := operand.(pyBool)
		return newPyBool(ok && b == tobj)
	default:
		return newPyBool(false)
	}
}

func (s *scope) negate(obj pyObject) pyObject {
	if obj.IsTruthy() {
		return False
	}
	return True
}

func (s *scope) interpretValueExpression(expr *ValueExpression) pyObject {
	obj := s.interpretValueExpressionPart(expr)
	if sl := expr.Slice; sl != nil {
		if sl.Colon == "" {
			s.Assert(sl.End == nil, "invalid syntax")
			obj = s.operator(Index, obj, s.interpretExpression(sl.Start))
		} else {
			obj = s.interpretSlice(obj, sl)
		}
	}
	if expr.Property != nil {
		obj = s.interpretIdent(s.property(obj, expr.Property.Name), expr.Property)
	} else if expr.Call != nil {
		obj = s.callObject("", obj, expr.Call)
	}
	return obj
}

func (s *scope) property(obj pyObject, property string) pyObject {
	return obj.Property(s, property)
}

func (s *scope) interpretValueExpressionPart(expr *ValueExpression) pyObject {
	if expr.Ident != nil {
		obj := s.Lookup(expr.Ident.Name)
		if len(expr.Ident.Action) == 0 {
			return obj
		}
		return s.interpretIdent(obj, expr.Ident)
	} else if expr.String != "" {
		return pyString(stringLiteral(expr.String))
	} else if expr.FString != nil {
		return s.interpretFString(expr.FString)
	} else if expr.Int != nil {
		return newPyInt(expr.Int.Int)
	} else if expr.Bool == "True" {
		return True
	} else if expr.Bool == "False" {
		return False
	} else if expr.Bool == "None" {
		return None
	} else if expr.List != nil {
		if expr.List.Comprehension == nil && len(expr.List.Values) == 0 {
			return emptyList
		}
		return s.interpretList(expr.List)
	} else if expr.Dict != nil {
		return s.interpretDict(expr.Dict)
	} else if expr.Tuple != nil {
		l := s.interpretList(expr.Tuple)
		if len(l) == 1 && expr.Tuple.Comprehension == nil {
			return l[0]
		}
		return l
	} else if expr.Lambda != nil {
		stmt := &Statement{}
		stmt.Return = &ReturnStatement{Values: []*Expression{&expr.Lambda.Expr}}
		return newPyFunc(s, &FuncDef{
			Name:       "<lambda>",
			Arguments:  expr.Lambda.Arguments,
			Statements: []*Statement{stmt},
		})
	}
	return None
}

func (s *scope) interpretFString(f *FString) pyObject {
	stringVar := func(v FStringVar) string {
		parts := strings.Split(v.Var, ".")
		obj := s.Lookup(parts[0])
		for _, key := range parts[1:] {
			obj = s.property(obj, key)
		}
		return obj.String()
	}
	var b strings.Builder
	for _, v := range f.Vars {
		b.WriteString(v.Prefix)
		b.WriteString(stringVar(v))
	}
	b.WriteString(f.Suffix)
	return pyString(b.String())
}

func (s *scope) interpretSlice(obj pyObject, sl *Slice) pyObject {
	start := s.interpretSliceExpression(obj, sl.Start, 0)
	switch t := obj.(type) {
	case pyList:
		end := s.interpretSliceExpression(obj, sl.End, newPyInt(len(t)))
		return t[start:end]
	case pyString:
		end := s.interpretSliceExpression(obj, sl.End, newPyInt(len(t)))
		return t[start:end]
	}
	s.Error("unsliceable type %s", obj.Type())
	return nil
}

func (s *scope) interpretSliceExpression(obj pyObject, expr *Expression, def pyInt) pyInt {
	if expr == nil {
		return def
	}
	return pyIndex(obj, s.interpretExpression(expr), true)
}

func (s *scope) interpretIdent(obj pyObject, expr *IdentExpr) pyObject {
	name := expr.Name
	for _, action := range expr.Action {
		if action.Property != nil {
			name = action.Property.Name
			obj = s.interpretIdent(s.property(obj, name), action.Property)
		} else if action.Call != nil {
			obj = s.callObject(name, obj, action.Call)
		}
	}
	return obj
}

func (s *scope) interpretIdentStatement(stmt *IdentStatement) pyObject {
	if stmt.Index != nil {
		obj := s.Lookup(stmt.Name)
		idx := s.interpretExpression(stmt.Index.Expr)
		if stmt.Index.Assign != nil {
			s.indexAssign(obj, idx, s.interpretExpression(stmt.Index.Assign))
		} else {
			s.indexAssign(obj, idx, s.operator(Add, s.operator(Index, obj, idx), s.interpretExpression(stmt.Index.AugAssign)))
		}
	} else if stmt.Unpack != nil {
		obj := s.interpretExpression(stmt.Unpack.Expr)
		l, ok := obj.(pyList)
		s.Assert(ok, "cannot unpack type %s", obj.Type())
		s.Assert(len(l) == len(stmt.Unpack.Names)+1, "wrong number of items to unpack; expected %d, got %d", len(stmt.Unpack.Names)+1, len(l))
		s.Set(stmt.Name, l[0])
		for i, name := range stmt.Unpack.Names {
			s.Set(name, l[i+1])
		}
	} else if stmt.Action != nil {
		if stmt.Action.Property != nil {
			return s.interpretIdent(s.property(s.Lookup(stmt.Name), stmt.Action.Property.Name), stmt.Action.Property)
		} else if stmt.Action.Call != nil {
			return s.callObject(stmt.Name, s.Lookup(stmt.Name), stmt.Action.Call)
		} else if stmt.Action.Assign != nil {
			s.Set(stmt.Name, s.interpretExpression(stmt.Action.Assign))
		} else if stmt.Action.AugAssign != nil {
			// The only augmented assignment operation supported is +=, implemented
			// exactly as x += y -> x = x + y.
			s.Set(stmt.Name, s.operator(Add, s.Lookup(stmt.Name), s.interpretExpression(stmt.Action.AugAssign)))
		}
	} else {
		return s.Lookup(stmt.Name)
	}
	return nil
}

func (s *scope) indexAssign(obj, idx, val pyObject) {
	ia, ok := obj.(indexAssignable)
	s.Assert(ok, "object of type %s cannot be assigned into", obj.Type())
	ia.IndexAssign(idx, val)
}

func (s *scope) interpretList(expr *List) pyList {
	if expr.Comprehension == nil {
		return pyList(s.evaluateExpressions(expr.Values))
	}
	cs := s.NewScope(s.filename, 0)
	it := s.iterable(expr.Comprehension.Expr)
	ret := make(pyList, 0, it.Len())
	cs.evaluateComprehension(it, expr.Comprehension, func(li pyObject) {
		if len(expr.Values) == 1 {
			ret = append(ret, cs.interpretExpression(expr.Values[0]))
		} else {
			ret = append(ret, pyList(cs.evaluateExpressions(expr.Values)))
		}
	})
	return ret
}

func (s *scope) interpretDict(expr *Dict) pyObject {
	if expr.Comprehension == nil {
		d := make(pyDict, len(expr.Items))
		for _, v := range expr.Items {
			d.IndexAssign(s.interpretExpression(&v.Key), s.interpretExpression(&v.Value))
		}
		return d
	}
	cs := s.NewScope(s.filename, 0)
	it := s.iterable(expr.Comprehension.Expr)
	ret := make(pyDict, it.Len())
	cs.evaluateComprehension(it, expr.Comprehension, func(li pyObject) {
		ret.IndexAssign(cs.interpretExpression(&expr.Items[0].Key), cs.interpretExpression(&expr.Items[0].Value))
	})
	return ret
}

// evaluateComprehension handles iterating a comprehension's loops. The
// provided callback is invoked with each item to be added to the result.
func (s *scope) evaluateComprehension(it iterable, comp *Comprehension, callback func(pyObject)) {
	if comp.Second != nil {
		for idx := 0; idx < it.Len(); idx++ {
			li := it.Item(idx)
			s.unpackNames(comp.Names, li)
			it2 := s.iterable(comp.Second.Expr)
			for idx2 := 0; idx2 < it2.Len(); idx2++ {
				li2 := it2.Item(idx2)
				if s.evaluateComprehensionExpression(comp, comp.Second.Names, li2) {
					callback(li2)
				}
			}
		}
		return
	}
	for idx := 0; idx < it.Len(); idx++ {
		li := it.Item(idx)
		if s.evaluateComprehensionExpression(comp, comp.Names, li) {
			callback(li)
		}
	}
}

func (s *scope) evaluateComprehensionExpression(comp *Comprehension, names []string, li pyObject) bool {
	s.unpackNames(names, li)
	return comp.If == nil || s.interpretExpression(comp.If).IsTruthy()
}

func (s *scope) unpackNames(names []string, obj pyObject) {
	if len(names) == 1 {
		s.Set(names[0], obj)
		return
	}
	l, ok := obj.(pyList)
	s.Assert(ok, "cannot unpack %s into %v", obj.Type(), names)
	s.Assert(len(l) == len(names), "incorrect number of values to unpack; expected %d, got %d", len(names), len(l))
	for i, name := range names {
		s.Set(name, l[i])
	}
}

// iterable returns the result of the given expression as an iterable object.
func (s *scope) iterable(expr *Expression) iterable {
	o := s.interpretExpression(expr)
	it, ok := o.(iterable)
	s.Assert(ok, "non-iterable type %s", o.Type())
	return it
}

// evaluateExpressions runs a series of expressions in this scope and
// collects their results.
func (s *scope) evaluateExpressions(exprs []*Expression) []pyObject {
	l := make(pyList, len(exprs))
	for i, v := range exprs {
		l[i] = s.interpretExpression(v)
	}
	return l
}

// stringLiteral converts a parsed string literal (still surrounded by quotes) to an unquoted version.
func stringLiteral(s string) string {
	return s[1 : len(s)-1]
}

// callObject attempts to call the given object.
func (s *scope) callObject(name string, obj pyObject, c *Call) pyObject {
	f, ok := obj.(*pyFunc)
	if !ok {
		s.Error("non-callable object '%s' (is a %s)", name, obj.Type())
	}
	return f.Call(s, c)
}

// Constant returns an object from an expression that describes a constant,
// e.g. None, "string", 42, [], etc. It returns nil if the expression is
// not determinable to be constant.
func (s *scope) Constant(expr *Expression) pyObject {
	if expr.optimised != nil && expr.optimised.Constant != nil {
		return expr.optimised.Constant
	} else if expr.Val == nil || expr.Val.Slice != nil || expr.Val.Property != nil || expr.Val.Call != nil || expr.Op != nil || expr.If != nil {
		return nil
	} else if expr.Val.Bool != "" || expr.Val.Int != nil || expr.Val.String != "" {
		return s.interpretValueExpression(expr.Val)
	} else if expr.Val.List != nil && expr.Val.List.Comprehension == nil {
		for _, v := range expr.Val.List.Values {
			if s.Constant(v) == nil {
				return nil
			}
		}
		return s.interpretValueExpression(expr.Val)
	} else if expr.Val.FString != nil && len(expr.Val.FString.Vars) == 0 {
		return pyString(expr.Val.FString.Suffix)
	}
	return nil
}
