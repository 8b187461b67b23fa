// Package interpreter holds the runtime façade: the heap, the global
// object, the call-frame stack, and the single sticky exception register,
// plus the tree-walking evaluator that drives a parsed program against the
// object model. It is deliberately the smallest evaluator that can exercise
// Value/Object/Shape/Heap end to end -- not a conformant ECMAScript front
// end (see SPEC_FULL.md §1).
package interpreter

import (
	"fmt"
	"math"
	"math/big"

	"jscore/internal/rtlog"
	"jscore/pkg/errors"
	"jscore/pkg/heap"
	"jscore/pkg/object"
	"jscore/pkg/parser"
	"jscore/pkg/shape"
	"jscore/pkg/value"
)

// Frame is one call-stack entry: the "this" binding, the arguments passed,
// and the lexical Environment the callee's body executes against.
type Frame struct {
	This     value.Value
	Args     []value.Value
	Env      *Environment
	FuncName string
}

// completionKind distinguishes normal completion from the three abrupt
// completions a tree-walking evaluator has to thread back up through nested
// statement evaluation: break, continue, and return. Thrown exceptions are
// carried separately, through the sticky exception register plus a plain
// Go error return, rather than as a fourth completion kind -- matching the
// spec's two-tier error design (§7): user-observable throws vs. the
// mechanical unwinding of loops/functions are different concerns.
type completionKind uint8

const (
	completionNormal completionKind = iota
	completionBreak
	completionContinue
	completionReturn
)

type completion struct {
	kind  completionKind
	value value.Value
}

// Interpreter is one JS runtime instance: its own Heap, its own
// GlobalObject, its own call stack and exception slot. There are no
// process-wide singletons -- every host (REPL, script driver, test harness)
// constructs its own.
type Interpreter struct {
	heap   *heap.Heap
	global *object.Object

	globalEnv *Environment
	frames    []*Frame

	exception    value.Value
	hasException bool

	log *rtlog.Logger

	pendingInterrupt bool
	loadedModules    map[string]bool
	strictMode       bool

	emptyObjectShape *shape.Shape
	objectProto      *object.Object
	functionProto    *object.Object
	arrayProto       *object.Object
	errorProto       *object.Object
	stringProto      *object.Object
	numberProto      *object.Object
	booleanProto     *object.Object
	bigintProto      *object.Object
	symbolProto      *object.Object
	dateProto        *object.Object
	regexpProto      *object.Object
}

// New constructs an empty Interpreter: a fresh Heap and a bare Global
// object with no built-ins installed. Callers that want a fully usable
// runtime should follow up with pkg/runtime.Initialize(interp).
func New(log *rtlog.Logger) *Interpreter {
	h := heap.New(log, 0)
	interp := &Interpreter{
		heap:          h,
		log:           log,
		loadedModules: make(map[string]bool),
	}
	h.AddRoot(interp)

	rootShape := shape.New(h, value.Null)
	interp.emptyObjectShape = rootShape
	interp.global = object.New(h, rootShape, object.KindGlobal)
	interp.globalEnv = NewEnvironment(h, nil)
	return interp
}

// Heap returns the runtime's heap, satisfying object.Context.
func (in *Interpreter) Heap() *heap.Heap { return in.heap }

// Log returns the diagnostics logger this interpreter was constructed with.
func (in *Interpreter) Log() *rtlog.Logger { return in.log }

// Global returns the GlobalObject, satisfying object.Context.
func (in *Interpreter) Global() *object.Object { return in.global }

// GlobalEnv returns the lexical environment backing top-level var/let/const
// declarations and function declarations.
func (in *Interpreter) GlobalEnv() *Environment { return in.globalEnv }

// EmptyObjectShape is the shared root shape new plain objects start from.
func (in *Interpreter) EmptyObjectShape() *shape.Shape { return in.emptyObjectShape }

func (in *Interpreter) SetObjectPrototype(p *object.Object)   { in.objectProto = p }
func (in *Interpreter) SetFunctionPrototype(p *object.Object) { in.functionProto = p }
func (in *Interpreter) SetArrayPrototype(p *object.Object)    { in.arrayProto = p }
func (in *Interpreter) SetErrorPrototype(p *object.Object)    { in.errorProto = p }
func (in *Interpreter) SetStringPrototype(p *object.Object)   { in.stringProto = p }
func (in *Interpreter) SetNumberPrototype(p *object.Object)   { in.numberProto = p }
func (in *Interpreter) SetBooleanPrototype(p *object.Object)  { in.booleanProto = p }
func (in *Interpreter) SetBigIntPrototype(p *object.Object)   { in.bigintProto = p }
func (in *Interpreter) SetSymbolPrototype(p *object.Object)   { in.symbolProto = p }
func (in *Interpreter) SetDatePrototype(p *object.Object)     { in.dateProto = p }
func (in *Interpreter) SetRegExpPrototype(p *object.Object)   { in.regexpProto = p }

func (in *Interpreter) ObjectPrototype() *object.Object   { return in.objectProto }
func (in *Interpreter) FunctionPrototype() *object.Object { return in.functionProto }
func (in *Interpreter) ArrayPrototype() *object.Object    { return in.arrayProto }
func (in *Interpreter) ErrorPrototype() *object.Object    { return in.errorProto }
func (in *Interpreter) StringPrototype() *object.Object   { return in.stringProto }
func (in *Interpreter) NumberPrototype() *object.Object   { return in.numberProto }
func (in *Interpreter) BooleanPrototype() *object.Object  { return in.booleanProto }
func (in *Interpreter) BigIntPrototype() *object.Object   { return in.bigintProto }
func (in *Interpreter) SymbolPrototype() *object.Object   { return in.symbolProto }
func (in *Interpreter) DatePrototype() *object.Object     { return in.dateProto }
func (in *Interpreter) RegExpPrototype() *object.Object   { return in.regexpProto }

// VisitRoots implements heap.Root: the global object, the exception slot
// (if set), and every live call frame's this/arguments/environment are the
// whole of this interpreter's contribution to the GC root set. Missing a
// root here is exactly the use-after-free class of bug §4.4 warns about.
func (in *Interpreter) VisitRoots(v heap.Visitor) {
	v.VisitCell(in.global)
	v.VisitCell(in.globalEnv)
	if in.hasException {
		v.VisitValue(in.exception)
	}
	for _, f := range in.frames {
		v.VisitValue(f.This)
		for _, a := range f.Args {
			v.VisitValue(a)
		}
		v.VisitCell(f.Env)
	}
}

// -- exception register --

// HasException reports whether an exception is currently pending.
func (in *Interpreter) HasException() bool { return in.hasException }

// Exception returns the pending exception value, or Undefined if none.
func (in *Interpreter) Exception() value.Value {
	if !in.hasException {
		return value.Undefined
	}
	return in.exception
}

// ClearException resets the exception slot, as a catch clause does once it
// has bound the thrown value.
func (in *Interpreter) ClearException() {
	in.hasException = false
	in.exception = value.Undefined
}

// SetPendingInterrupt is set by the host in response to a SIGINT; the
// interpreter checks it at statement boundaries and translates it into a
// synthetic throw (§5 Concurrency: Cancellation & timeouts).
func (in *Interpreter) SetPendingInterrupt() { in.pendingInterrupt = true }

// SetStrictMode and StrictMode gate the §8 scenario S5 behavior: assigning
// to a non-writable own property throws TypeError in strict mode and is a
// silent no-op in sloppy mode (matching object.Object.SetOwn's default
// no-op, which has no mode awareness of its own).
func (in *Interpreter) SetStrictMode(strict bool) { in.strictMode = strict }
func (in *Interpreter) StrictMode() bool          { return in.strictMode }

// MarkModuleLoaded records path as loaded, reporting whether it was already
// loaded -- backs the test-mode load() global's once-only semantics.
func (in *Interpreter) MarkModuleLoaded(path string) (alreadyLoaded bool) {
	if in.loadedModules[path] {
		return true
	}
	in.loadedModules[path] = true
	return false
}

// ThrowValue sets the exception register directly to an arbitrary value,
// used when the thrown operand of a `throw` statement is already evaluated.
func (in *Interpreter) ThrowValue(v value.Value) error {
	in.exception = v
	in.hasException = true
	return fmt.Errorf("uncaught exception")
}

// Throw creates an Error of the named kind (TypeError, RangeError,
// SyntaxError, ReferenceError, URIError, EvalError, or "" for plain Error)
// with the given message and stores it in the exception register,
// satisfying object.Context.Throw and spec.md §4.5's
// throw_exception<ErrorKind>.
func (in *Interpreter) Throw(kind, message string) error {
	errObj := in.newErrorObject(kind, message)
	return in.ThrowValue(errObj.ToValue())
}

func (in *Interpreter) newErrorObject(kind, message string) *object.Object {
	proto := in.errorProto
	errObj := object.New(in.heap, in.protoShape(proto), object.KindError)
	errObj.ErrorKind = kind
	name := kind
	if name == "" {
		name = "Error"
	}
	errObj.SetOwn(in.heap, in.log, "message", value.String(message))
	errObj.SetOwn(in.heap, in.log, "name", value.String(name))
	errObj.SetOwn(in.heap, in.log, "stack", value.String(fmt.Sprintf("%s: %s", name, message)))
	return errObj
}

func (in *Interpreter) protoShape(proto *object.Object) *shape.Shape {
	if proto == nil {
		return in.emptyObjectShape
	}
	return in.emptyObjectShape.WithPrototype(in.heap, proto.ToValue())
}

// -- call frame access, satisfying object.Context --

// Argument returns the i'th argument of the current (topmost) call frame,
// or Undefined if i is out of range -- arguments beyond those actually
// passed read as undefined, per ECMAScript calling convention.
func (in *Interpreter) Argument(i int) value.Value {
	if len(in.frames) == 0 {
		return value.Undefined
	}
	f := in.frames[len(in.frames)-1]
	if i < 0 || i >= len(f.Args) {
		return value.Undefined
	}
	return f.Args[i]
}

// ArgumentCount returns the number of arguments passed to the current call.
func (in *Interpreter) ArgumentCount() int {
	if len(in.frames) == 0 {
		return 0
	}
	return len(in.frames[len(in.frames)-1].Args)
}

// This returns the current frame's "this" binding.
func (in *Interpreter) This() value.Value {
	if len(in.frames) == 0 {
		return value.Undefined
	}
	return in.frames[len(in.frames)-1].This
}

// CurrentEnv returns the lexical environment of the current call, or the
// global environment if no call is active.
func (in *Interpreter) CurrentEnv() *Environment {
	if len(in.frames) == 0 {
		return in.globalEnv
	}
	return in.frames[len(in.frames)-1].Env
}

// NewPlainObject allocates a plain object inheriting from Object.prototype.
func (in *Interpreter) NewPlainObject() *object.Object {
	return object.New(in.heap, in.protoShape(in.objectProto), object.KindPlain)
}

// NewArray allocates an array-like object inheriting from Array.prototype.
func (in *Interpreter) NewArray(elements ...value.Value) *object.Object {
	arr := object.New(in.heap, in.protoShape(in.arrayProto), object.KindArray)
	arr.EnableArrayLength()
	for i, el := range elements {
		arr.SetIndex(uint32(i), el)
	}
	return arr
}

// DefineNativeFunction installs name on obj as a KindNativeFunction object
// inheriting Function.prototype, per §6's "Host API" define_native_function.
func (in *Interpreter) DefineNativeFunction(obj *object.Object, name string, fn object.NativeFunc, length int, enumerable bool) {
	f := object.New(in.heap, in.protoShape(in.functionProto), object.KindNativeFunction)
	f.Native = fn
	f.FuncName = name
	f.SetOwnNonEnumerable(in.heap, in.log, "name", value.String(name))
	f.SetOwnNonEnumerable(in.heap, in.log, "length", value.Number(float64(length)))
	if enumerable {
		obj.SetOwn(in.heap, in.log, name, f.ToValue())
	} else {
		obj.SetOwnNonEnumerable(in.heap, in.log, name, f.ToValue())
	}
}

// -- calling callables --

// Call invokes fn with the given this/args, dispatching on the callee's
// kind. It is the object.Context.Call implementation, and also the
// evaluator's own call-expression path.
func (in *Interpreter) Call(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	callee, ok := object.FromValue(fn)
	if !ok {
		return value.Empty, in.Throw("TypeError", "value is not callable")
	}
	switch callee.Kind() {
	case object.KindNativeFunction:
		return in.callNative(callee, this, args)
	case object.KindFunction:
		return in.callUserFunction(callee, this, args)
	case object.KindBoundFunction:
		boundArgs := append(append([]value.Value{}, callee.BoundArgs...), args...)
		return in.Call(callee.BoundTo.ToValue(), callee.BoundThis, boundArgs)
	default:
		return value.Empty, in.Throw("TypeError", callee.Kind().String()+" is not a function")
	}
}

func (in *Interpreter) callNative(callee *object.Object, this value.Value, args []value.Value) (value.Value, error) {
	in.frames = append(in.frames, &Frame{This: this, Args: args, FuncName: callee.FuncName})
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()
	return callee.Native(in, this, args)
}

func (in *Interpreter) callUserFunction(callee *object.Object, this value.Value, args []value.Value) (value.Value, error) {
	var parentEnv *Environment
	if cl, ok := callee.Closure.(*Environment); ok {
		parentEnv = cl
	} else {
		parentEnv = in.globalEnv
	}
	env := NewEnvironment(in.heap, parentEnv)
	for i, p := range callee.FuncParams {
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = value.Undefined
		}
		env.Declare(p, v, true)
	}
	argsArr := in.NewArray(args...)
	env.Declare("arguments", argsArr.ToValue(), true)

	frameThis := this
	if callee.IsArrow {
		// Arrow functions capture "this" lexically -- use the enclosing
		// frame's this instead of whatever the call site passed.
		frameThis = in.This()
	}

	in.frames = append(in.frames, &Frame{This: frameThis, Args: args, Env: env, FuncName: callee.FuncName})
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	if callee.FuncExpr != nil {
		v, err := in.evalExpression(callee.FuncExpr, env)
		return v, err
	}

	comp, err := in.evalBlock(callee.FuncBody, env)
	if err != nil {
		return value.Empty, err
	}
	if comp.kind == completionReturn {
		return comp.value, nil
	}
	return value.Undefined, nil
}

// Construct implements `new fn(args...)`: allocates a fresh object whose
// prototype is fn.prototype, invokes fn with that object as `this`, and
// returns the constructor's return value if it returned an object, or the
// freshly allocated one otherwise.
func (in *Interpreter) Construct(fn value.Value, args []value.Value) (value.Value, error) {
	callee, ok := object.FromValue(fn)
	if !ok {
		return value.Empty, in.Throw("TypeError", "value is not a constructor")
	}
	var proto *object.Object
	if protoVal, ok := callee.GetOwn(in.heap, "prototype"); ok {
		if p, ok := object.FromValue(protoVal); ok {
			proto = p
		}
	}
	inst := object.New(in.heap, in.protoShape(proto), object.KindPlain)
	result, err := in.Call(fn, inst.ToValue(), args)
	if err != nil {
		return value.Empty, err
	}
	if result.IsObject() {
		return result, nil
	}
	return inst.ToValue(), nil
}

// -- running a parsed program --

// Run evaluates program against the global object and returns the value of
// its last expression statement (the REPL's "last result"), or Undefined.
func (in *Interpreter) Run(program *parser.Program) (value.Value, error) {
	var last value.Value = value.Undefined
	in.hoistDeclarations(program.Statements, in.globalEnv)
	for _, stmt := range program.Statements {
		if in.pendingInterrupt {
			in.pendingInterrupt = false
			return value.Empty, in.Throw("Error", "interrupted")
		}
		comp, err := in.evalStatement(stmt, in.globalEnv)
		if err != nil {
			return value.Empty, err
		}
		if es, ok := stmt.(*parser.ExpressionStatement); ok && es.Expression != nil {
			last = comp.value
		}
	}
	return last, nil
}

// hoistDeclarations pre-declares function declarations (and var bindings,
// left undefined) in env before the body runs, matching ECMAScript's
// function/var hoisting -- a function can be called from code that
// textually precedes its declaration in the same scope.
func (in *Interpreter) hoistDeclarations(stmts []parser.Statement, env *Environment) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.ExpressionStatement:
			if fl, ok := s.Expression.(*parser.FunctionLiteral); ok && fl.Name != nil {
				fn := in.makeFunction(fl, env)
				env.Declare(fl.Name.Value, fn.ToValue(), true)
			}
		case *parser.VariableStatement:
			if s.Kind == "var" {
				if _, exists := env.Lookup(s.Name.Value); !exists {
					env.Declare(s.Name.Value, value.Undefined, true)
				}
			}
		}
	}
}

func (in *Interpreter) makeFunction(fl *parser.FunctionLiteral, env *Environment) *object.Object {
	fn := object.New(in.heap, in.protoShape(in.functionProto), object.KindFunction)
	if fl.Name != nil {
		fn.FuncName = fl.Name.Value
	}
	for _, p := range fl.Parameters {
		fn.FuncParams = append(fn.FuncParams, p.Value)
	}
	fn.FuncBody = fl.Body
	fn.Closure = env
	fn.SetOwnNonEnumerable(in.heap, in.log, "name", value.String(fn.FuncName))
	fn.SetOwnNonEnumerable(in.heap, in.log, "length", value.Number(float64(len(fn.FuncParams))))
	protoObj := in.NewPlainObject()
	protoObj.SetOwnNonEnumerable(in.heap, in.log, "constructor", fn.ToValue())
	fn.SetOwnNonEnumerable(in.heap, in.log, "prototype", protoObj.ToValue())
	return fn
}

func (in *Interpreter) makeArrowFunction(af *parser.ArrowFunctionLiteral, env *Environment) *object.Object {
	fn := object.New(in.heap, in.protoShape(in.functionProto), object.KindFunction)
	fn.IsArrow = true
	for _, p := range af.Parameters {
		fn.FuncParams = append(fn.FuncParams, p.Value)
	}
	switch body := af.Body.(type) {
	case *parser.BlockStatement:
		fn.FuncBody = body
	case parser.Expression:
		fn.FuncExpr = body
	}
	fn.Closure = env
	fn.SetOwnNonEnumerable(in.heap, in.log, "name", value.String(""))
	fn.SetOwnNonEnumerable(in.heap, in.log, "length", value.Number(float64(len(fn.FuncParams))))
	return fn
}

// -- statement evaluation --

func (in *Interpreter) evalStatement(stmt parser.Statement, env *Environment) (completion, error) {
	switch s := stmt.(type) {
	case *parser.ExpressionStatement:
		if s.Expression == nil {
			return completion{}, nil
		}
		v, err := in.evalExpression(s.Expression, env)
		return completion{value: v}, err
	case *parser.VariableStatement:
		return in.evalVariableStatement(s, env)
	case *parser.BlockStatement:
		return in.evalBlock(s, NewEnvironment(in.heap, env))
	case *parser.IfStatement:
		return in.evalIf(s, env)
	case *parser.WhileStatement:
		return in.evalWhile(s, env)
	case *parser.DoWhileStatement:
		return in.evalDoWhile(s, env)
	case *parser.ForStatement:
		return in.evalFor(s, env)
	case *parser.ForInStatement:
		return in.evalForIn(s, env)
	case *parser.ReturnStatement:
		v := value.Undefined
		if s.Value != nil {
			var err error
			v, err = in.evalExpression(s.Value, env)
			if err != nil {
				return completion{}, err
			}
		}
		return completion{kind: completionReturn, value: v}, nil
	case *parser.BreakStatement:
		return completion{kind: completionBreak}, nil
	case *parser.ContinueStatement:
		return completion{kind: completionContinue}, nil
	case *parser.ThrowStatement:
		v, err := in.evalExpression(s.Value, env)
		if err != nil {
			return completion{}, err
		}
		return completion{}, in.ThrowValue(v)
	case *parser.TryStatement:
		return in.evalTry(s, env)
	default:
		return completion{}, fmt.Errorf("interpreter: unsupported statement %T", stmt)
	}
}

func (in *Interpreter) evalVariableStatement(s *parser.VariableStatement, env *Environment) (completion, error) {
	v := value.Undefined
	if s.Value != nil {
		var err error
		v, err = in.evalExpression(s.Value, env)
		if err != nil {
			return completion{}, err
		}
	}
	env.Declare(s.Name.Value, v, s.Kind != "const")
	return completion{}, nil
}

func (in *Interpreter) evalBlock(b *parser.BlockStatement, env *Environment) (completion, error) {
	in.hoistDeclarations(b.Statements, env)
	for _, stmt := range b.Statements {
		comp, err := in.evalStatement(stmt, env)
		if err != nil {
			return completion{}, err
		}
		if comp.kind != completionNormal {
			return comp, nil
		}
	}
	return completion{}, nil
}

func (in *Interpreter) evalIf(s *parser.IfStatement, env *Environment) (completion, error) {
	cond, err := in.evalExpression(s.Condition, env)
	if err != nil {
		return completion{}, err
	}
	if cond.IsTruthy() {
		return in.evalBlock(s.Consequence, NewEnvironment(in.heap, env))
	}
	if s.Alternative != nil {
		return in.evalStatement(s.Alternative, env)
	}
	return completion{}, nil
}

func (in *Interpreter) evalWhile(s *parser.WhileStatement, env *Environment) (completion, error) {
	for {
		cond, err := in.evalExpression(s.Condition, env)
		if err != nil {
			return completion{}, err
		}
		if !cond.IsTruthy() {
			break
		}
		comp, err := in.evalBlock(s.Body, NewEnvironment(in.heap, env))
		if err != nil {
			return completion{}, err
		}
		if comp.kind == completionBreak {
			break
		}
		if comp.kind == completionReturn {
			return comp, nil
		}
	}
	return completion{}, nil
}

func (in *Interpreter) evalDoWhile(s *parser.DoWhileStatement, env *Environment) (completion, error) {
	for {
		comp, err := in.evalBlock(s.Body, NewEnvironment(in.heap, env))
		if err != nil {
			return completion{}, err
		}
		if comp.kind == completionBreak {
			break
		}
		if comp.kind == completionReturn {
			return comp, nil
		}
		cond, err := in.evalExpression(s.Condition, env)
		if err != nil {
			return completion{}, err
		}
		if !cond.IsTruthy() {
			break
		}
	}
	return completion{}, nil
}

func (in *Interpreter) evalFor(s *parser.ForStatement, env *Environment) (completion, error) {
	loopEnv := NewEnvironment(in.heap, env)
	if s.Init != nil {
		if _, err := in.evalStatement(s.Init, loopEnv); err != nil {
			return completion{}, err
		}
	}
	for {
		if s.Condition != nil {
			cond, err := in.evalExpression(s.Condition, loopEnv)
			if err != nil {
				return completion{}, err
			}
			if !cond.IsTruthy() {
				break
			}
		}
		comp, err := in.evalBlock(s.Body, NewEnvironment(in.heap, loopEnv))
		if err != nil {
			return completion{}, err
		}
		if comp.kind == completionBreak {
			break
		}
		if comp.kind == completionReturn {
			return comp, nil
		}
		if s.Update != nil {
			if _, err := in.evalExpression(s.Update, loopEnv); err != nil {
				return completion{}, err
			}
		}
	}
	return completion{}, nil
}

// evalForIn enumerates own enumerable keys in the order §3.5/§8 require:
// indexed keys ascending, then named keys in insertion order.
func (in *Interpreter) evalForIn(s *parser.ForInStatement, env *Environment) (completion, error) {
	objVal, err := in.evalExpression(s.Object, env)
	if err != nil {
		return completion{}, err
	}
	obj, ok := object.FromValue(objVal)
	if !ok {
		return completion{}, nil
	}
	keys := make([]value.Value, 0)
	for _, idx := range obj.IndexKeys() {
		keys = append(keys, value.String(fmt.Sprintf("%d", idx)))
	}
	for _, name := range obj.OwnKeys(in.heap) {
		keys = append(keys, value.String(name))
	}
	for _, k := range keys {
		loopEnv := NewEnvironment(in.heap, env)
		if s.Kind != "" {
			loopEnv.Declare(s.Name.Value, k, true)
		} else {
			if ok, _ := env.Assign(s.Name.Value, k); !ok {
				env.Declare(s.Name.Value, k, true)
			}
		}
		comp, err := in.evalBlock(s.Body, NewEnvironment(in.heap, loopEnv))
		if err != nil {
			return completion{}, err
		}
		if comp.kind == completionBreak {
			break
		}
		if comp.kind == completionReturn {
			return comp, nil
		}
	}
	return completion{}, nil
}

func (in *Interpreter) evalTry(s *parser.TryStatement, env *Environment) (completion, error) {
	comp, err := in.evalBlock(s.Block, NewEnvironment(in.heap, env))
	if err != nil {
		if s.CatchBlock == nil {
			if s.FinallyBlock != nil {
				if _, ferr := in.evalBlock(s.FinallyBlock, NewEnvironment(in.heap, env)); ferr != nil {
					return completion{}, ferr
				}
			}
			return completion{}, err
		}
		caught := in.Exception()
		in.ClearException()
		catchEnv := NewEnvironment(in.heap, env)
		if s.CatchParam != nil {
			catchEnv.Declare(s.CatchParam.Value, caught, true)
		}
		comp, err = in.evalBlock(s.CatchBlock, catchEnv)
	}
	if s.FinallyBlock != nil {
		fcomp, ferr := in.evalBlock(s.FinallyBlock, NewEnvironment(in.heap, env))
		if ferr != nil {
			return completion{}, ferr
		}
		if fcomp.kind != completionNormal {
			return fcomp, nil
		}
	}
	return comp, err
}

// -- expression evaluation --

func (in *Interpreter) evalExpression(expr parser.Expression, env *Environment) (value.Value, error) {
	switch e := expr.(type) {
	case *parser.Identifier:
		if v, ok := env.Lookup(e.Value); ok {
			return v, nil
		}
		if v, ok := in.global.GetOwn(in.heap, e.Value); ok {
			return v, nil
		}
		return value.Empty, in.Throw("ReferenceError", e.Value+" is not defined")
	case *parser.NumberLiteral:
		return value.Number(e.Value), nil
	case *parser.StringLiteral:
		return value.String(e.Value), nil
	case *parser.BooleanLiteral:
		return value.Boolean(e.Value), nil
	case *parser.NullLiteral:
		return value.Null, nil
	case *parser.UndefinedLiteral:
		return value.Undefined, nil
	case *parser.ThisExpression:
		return in.This(), nil
	case *parser.ArrayLiteral:
		elems := make([]value.Value, len(e.Elements))
		for i, el := range e.Elements {
			if el == nil {
				elems[i] = value.Undefined
				continue
			}
			v, err := in.evalExpression(el, env)
			if err != nil {
				return value.Empty, err
			}
			elems[i] = v
		}
		return in.NewArray(elems...).ToValue(), nil
	case *parser.ObjectLiteral:
		return in.evalObjectLiteral(e, env)
	case *parser.FunctionLiteral:
		return in.makeFunction(e, env).ToValue(), nil
	case *parser.ArrowFunctionLiteral:
		return in.makeArrowFunction(e, env).ToValue(), nil
	case *parser.PrefixExpression:
		return in.evalPrefix(e, env)
	case *parser.PostfixExpression:
		return in.evalPostfix(e, env)
	case *parser.InfixExpression:
		return in.evalInfix(e, env)
	case *parser.LogicalExpression:
		return in.evalLogical(e, env)
	case *parser.AssignmentExpression:
		return in.evalAssignment(e, env)
	case *parser.ConditionalExpression:
		cond, err := in.evalExpression(e.Condition, env)
		if err != nil {
			return value.Empty, err
		}
		if cond.IsTruthy() {
			return in.evalExpression(e.Consequence, env)
		}
		return in.evalExpression(e.Alternative, env)
	case *parser.CallExpression:
		return in.evalCall(e, env)
	case *parser.NewExpression:
		return in.evalNew(e, env)
	case *parser.MemberExpression:
		v, _, _, err := in.evalMember(e, env)
		return v, err
	case *parser.SequenceExpression:
		var last value.Value = value.Undefined
		for _, part := range e.Expressions {
			v, err := in.evalExpression(part, env)
			if err != nil {
				return value.Empty, err
			}
			last = v
		}
		return last, nil
	default:
		return value.Empty, fmt.Errorf("interpreter: unsupported expression %T", expr)
	}
}

func (in *Interpreter) evalObjectLiteral(e *parser.ObjectLiteral, env *Environment) (value.Value, error) {
	obj := in.NewPlainObject()
	for i, keyExpr := range e.Keys {
		key, err := in.propertyKeyName(keyExpr, env)
		if err != nil {
			return value.Empty, err
		}
		v, err := in.evalExpression(e.Values[i], env)
		if err != nil {
			return value.Empty, err
		}
		obj.SetOwn(in.heap, in.log, key, v)
	}
	return obj.ToValue(), nil
}

func (in *Interpreter) propertyKeyName(keyExpr parser.Expression, env *Environment) (string, error) {
	switch k := keyExpr.(type) {
	case *parser.Identifier:
		return k.Value, nil
	case *parser.StringLiteral:
		return k.Value, nil
	case *parser.NumberLiteral:
		return value.Number(k.Value).ToStringValue(), nil
	default:
		v, err := in.evalExpression(keyExpr, env)
		if err != nil {
			return "", err
		}
		return v.ToStringValue(), nil
	}
}

func (in *Interpreter) evalPrefix(e *parser.PrefixExpression, env *Environment) (value.Value, error) {
	if e.Operator == "typeof" {
		if id, ok := e.Right.(*parser.Identifier); ok {
			if _, found := env.Lookup(id.Value); !found {
				if _, found := in.global.GetOwn(in.heap, id.Value); !found {
					return value.String("undefined"), nil
				}
			}
		}
		v, err := in.evalExpression(e.Right, env)
		if err != nil {
			return value.Empty, err
		}
		return value.String(jsTypeOf(v)), nil
	}
	if e.Operator == "delete" {
		if me, ok := e.Right.(*parser.MemberExpression); ok {
			objVal, err := in.evalExpression(me.Object, env)
			if err != nil {
				return value.Empty, err
			}
			obj, ok := object.FromValue(objVal)
			if !ok {
				return value.True, nil
			}
			name, err := in.memberPropertyName(me, env)
			if err != nil {
				return value.Empty, err
			}
			if idx, ok := arrayIndex(name); ok {
				return value.Boolean(obj.DeleteIndex(idx)), nil
			}
			return value.Boolean(obj.DeleteOwn(in.heap, in.log, name)), nil
		}
		return value.True, nil
	}
	if e.Operator == "++" || e.Operator == "--" {
		return in.evalIncDec(e.Right, env, e.Operator, true)
	}

	v, err := in.evalExpression(e.Right, env)
	if err != nil {
		return value.Empty, err
	}
	switch e.Operator {
	case "-":
		return value.Number(-in.toNumber(v)), nil
	case "+":
		return value.Number(in.toNumber(v)), nil
	case "!":
		return value.Boolean(!v.IsTruthy()), nil
	case "void":
		return value.Undefined, nil
	default:
		return value.Empty, fmt.Errorf("interpreter: unsupported prefix operator %q", e.Operator)
	}
}

func (in *Interpreter) evalPostfix(e *parser.PostfixExpression, env *Environment) (value.Value, error) {
	return in.evalIncDec(e.Left, env, e.Operator, false)
}

func (in *Interpreter) evalIncDec(target parser.Expression, env *Environment, op string, prefix bool) (value.Value, error) {
	old, err := in.evalExpression(target, env)
	if err != nil {
		return value.Empty, err
	}
	n := in.toNumber(old)
	var nv float64
	if op == "++" {
		nv = n + 1
	} else {
		nv = n - 1
	}
	if err := in.assignTo(target, value.Number(nv), env); err != nil {
		return value.Empty, err
	}
	if prefix {
		return value.Number(nv), nil
	}
	return value.Number(n), nil
}

func (in *Interpreter) evalLogical(e *parser.LogicalExpression, env *Environment) (value.Value, error) {
	left, err := in.evalExpression(e.Left, env)
	if err != nil {
		return value.Empty, err
	}
	switch e.Operator {
	case "&&":
		if !left.IsTruthy() {
			return left, nil
		}
		return in.evalExpression(e.Right, env)
	case "||":
		if left.IsTruthy() {
			return left, nil
		}
		return in.evalExpression(e.Right, env)
	case "??":
		if !left.IsNullish() {
			return left, nil
		}
		return in.evalExpression(e.Right, env)
	default:
		return value.Empty, fmt.Errorf("interpreter: unsupported logical operator %q", e.Operator)
	}
}

func (in *Interpreter) evalAssignment(e *parser.AssignmentExpression, env *Environment) (value.Value, error) {
	if e.Operator == "=" {
		v, err := in.evalExpression(e.Value, env)
		if err != nil {
			return value.Empty, err
		}
		if err := in.assignTo(e.Target, v, env); err != nil {
			return value.Empty, err
		}
		return v, nil
	}
	old, err := in.evalExpression(e.Target, env)
	if err != nil {
		return value.Empty, err
	}
	rhs, err := in.evalExpression(e.Value, env)
	if err != nil {
		return value.Empty, err
	}
	op := e.Operator[:len(e.Operator)-1]
	result, err := in.applyInfix(op, old, rhs)
	if err != nil {
		return value.Empty, err
	}
	if err := in.assignTo(e.Target, result, env); err != nil {
		return value.Empty, err
	}
	return result, nil
}

func (in *Interpreter) assignTo(target parser.Expression, v value.Value, env *Environment) error {
	switch t := target.(type) {
	case *parser.Identifier:
		if ok, mutable := env.Assign(t.Value, v); ok {
			if !mutable {
				return in.Throw("TypeError", "Assignment to constant variable.")
			}
			return nil
		}
		if _, found := in.global.GetOwn(in.heap, t.Value); found {
			in.global.SetOwn(in.heap, in.log, t.Value, v)
			return nil
		}
		// Sloppy-mode implicit global, matching §3.1's lenient host note.
		in.global.SetOwn(in.heap, in.log, t.Value, v)
		in.globalEnv.Declare(t.Value, v, true)
		return nil
	case *parser.MemberExpression:
		objVal, err := in.evalExpression(t.Object, env)
		if err != nil {
			return err
		}
		obj, ok := object.FromValue(objVal)
		if !ok {
			return in.Throw("TypeError", "cannot set property on non-object")
		}
		name, err := in.memberPropertyName(t, env)
		if err != nil {
			return err
		}
		if name == "length" && obj.Kind() == object.KindArray {
			obj.SetArrayLength(uint32(v.AsNumber()))
			return nil
		}
		if !t.Computed {
			if offset, ok := t.CachedOffset(obj.Shape()); ok && obj.SetOwnAtOffset(offset, v) {
				return nil
			}
		}
		if idx, ok := arrayIndex(name); ok {
			obj.SetIndex(idx, v)
			return nil
		}
		if _, setter, found := obj.GetOwnAccessor(in.heap, name); found {
			if !setter.IsUndefined() {
				_, err := in.Call(setter, objVal, []value.Value{v})
				return err
			}
			return nil
		}
		if in.strictMode && obj.IsOwnNonWritable(in.heap, name) {
			return in.Throw("TypeError", "Cannot assign to read only property '"+name+"' of object")
		}
		obj.SetOwn(in.heap, in.log, name, v)
		if !t.Computed {
			if offset, ok := obj.OwnWritablePropertyOffset(in.heap, name); ok {
				t.SetCachedOffset(obj.Shape(), offset)
			}
		}
		return nil
	default:
		return fmt.Errorf("interpreter: invalid assignment target %T", target)
	}
}

func (in *Interpreter) memberPropertyName(me *parser.MemberExpression, env *Environment) (string, error) {
	if !me.Computed {
		return me.Property.(*parser.Identifier).Value, nil
	}
	v, err := in.evalExpression(me.Property, env)
	if err != nil {
		return "", err
	}
	return v.ToStringValue(), nil
}

// evalMember returns the member's current value plus the receiver object
// and resolved property name, so callers (evalCall) can reuse the receiver
// as "this" without re-evaluating the object expression.
func (in *Interpreter) evalMember(me *parser.MemberExpression, env *Environment) (value.Value, value.Value, string, error) {
	objVal, err := in.evalExpression(me.Object, env)
	if err != nil {
		return value.Empty, value.Empty, "", err
	}
	name, err := in.memberPropertyName(me, env)
	if err != nil {
		return value.Empty, value.Empty, "", err
	}
	if !me.Computed {
		if v, ok := in.tryCachedMemberRead(me, objVal, name); ok {
			return v, objVal, name, nil
		}
	}
	v, err := in.getProperty(objVal, name)
	if !me.Computed && err == nil {
		in.updateMemberCache(me, objVal, name)
	}
	return v, objVal, name, err
}

// tryCachedMemberRead is the inline cache's fast path (SPEC_FULL.md §6.1):
// if objVal is a plain object whose current Shape matches what this call
// site last saw, the property's slot offset is already known and the
// property-table walk in getProperty can be skipped entirely. Any mismatch
// (different Shape, non-object receiver, accessor property materialised in
// the meantime) falls straight through to the general path.
func (in *Interpreter) tryCachedMemberRead(me *parser.MemberExpression, objVal value.Value, name string) (value.Value, bool) {
	if objVal.Type() != value.TypeObject {
		return value.Empty, false
	}
	obj, ok := object.FromValue(objVal)
	if !ok {
		return value.Empty, false
	}
	offset, ok := me.CachedOffset(obj.Shape())
	if !ok {
		return value.Empty, false
	}
	return obj.GetOwnAtOffset(offset)
}

// updateMemberCache records this site's current Shape/offset after a
// successful general-path lookup, so the next visit can use the fast path.
// Only a direct own, non-accessor property on obj itself (not inherited, not
// an indexed/length special case) is cacheable -- evalMember already folds
// array-index and "length" reads into getProperty before this runs, so a
// cache hit there would be wrong; this only ever caches a plain named own
// property.
func (in *Interpreter) updateMemberCache(me *parser.MemberExpression, objVal value.Value, name string) {
	if objVal.Type() != value.TypeObject {
		return
	}
	obj, ok := object.FromValue(objVal)
	if !ok {
		return
	}
	if offset, ok := obj.OwnPropertyOffset(in.heap, name); ok {
		me.SetCachedOffset(obj.Shape(), offset)
	}
}

// getProperty reads a named or indexed property off any value, boxing
// primitives into their wrapper prototype chain (String.prototype.length,
// Number.prototype.toFixed, and so on) the way to_object would.
func (in *Interpreter) getProperty(receiver value.Value, name string) (value.Value, error) {
	switch receiver.Type() {
	case value.TypeObject:
		obj, _ := object.FromValue(receiver)
		if idx, ok := arrayIndex(name); ok {
			if v, ok := obj.GetIndex(idx); ok {
				return v, nil
			}
		}
		if name == "length" && obj.Kind() == object.KindArray {
			return value.Number(float64(obj.ArrayLength())), nil
		}
		for cur := obj; cur != nil; {
			if v, ok := cur.GetOwn(in.heap, name); ok {
				if g, _, accessor := cur.GetOwnAccessor(in.heap, name); accessor {
					if g.IsUndefined() {
						return value.Undefined, nil
					}
					return in.Call(g, receiver, nil)
				}
				return v, nil
			}
			protoVal := cur.Prototype()
			if !protoVal.IsObject() {
				break
			}
			cur, _ = object.FromValue(protoVal)
		}
		return value.Undefined, nil
	case value.TypeString:
		if name == "length" {
			return value.Number(float64(len([]rune(receiver.AsString())))), nil
		}
		if idx, ok := arrayIndex(name); ok {
			runes := []rune(receiver.AsString())
			if int(idx) < len(runes) {
				return value.String(string(runes[idx])), nil
			}
			return value.Undefined, nil
		}
		return in.protoProperty(in.stringProto, name, receiver)
	case value.TypeNumber:
		return in.protoProperty(in.numberProto, name, receiver)
	case value.TypeBoolean:
		return in.protoProperty(in.booleanProto, name, receiver)
	case value.TypeBigInt:
		return in.protoProperty(in.bigintProto, name, receiver)
	case value.TypeSymbol:
		return in.protoProperty(in.symbolProto, name, receiver)
	case value.TypeNull, value.TypeUndefined:
		return value.Empty, in.Throw("TypeError", "cannot read properties of "+receiver.ToStringValue())
	default:
		return value.Undefined, nil
	}
}

func (in *Interpreter) protoProperty(proto *object.Object, name string, receiver value.Value) (value.Value, error) {
	if proto == nil {
		return value.Undefined, nil
	}
	if v, ok := proto.GetOwn(in.heap, name); ok {
		return v, nil
	}
	return value.Undefined, nil
}

func (in *Interpreter) evalCall(e *parser.CallExpression, env *Environment) (value.Value, error) {
	var thisVal value.Value = value.Undefined
	var fnVal value.Value
	var err error
	if me, ok := e.Function.(*parser.MemberExpression); ok {
		fnVal, thisVal, _, err = in.evalMember(me, env)
		if err != nil {
			return value.Empty, err
		}
	} else {
		fnVal, err = in.evalExpression(e.Function, env)
		if err != nil {
			return value.Empty, err
		}
	}
	args := make([]value.Value, len(e.Arguments))
	for i, a := range e.Arguments {
		v, err := in.evalExpression(a, env)
		if err != nil {
			return value.Empty, err
		}
		args[i] = v
	}
	return in.Call(fnVal, thisVal, args)
}

func (in *Interpreter) evalNew(e *parser.NewExpression, env *Environment) (value.Value, error) {
	fnVal, err := in.evalExpression(e.Constructor, env)
	if err != nil {
		return value.Empty, err
	}
	args := make([]value.Value, len(e.Arguments))
	for i, a := range e.Arguments {
		v, err := in.evalExpression(a, env)
		if err != nil {
			return value.Empty, err
		}
		args[i] = v
	}
	return in.Construct(fnVal, args)
}

func arrayIndex(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	var n uint64
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > math.MaxUint32 {
			return 0, false
		}
	}
	if name[0] == '0' && len(name) > 1 {
		return 0, false
	}
	return uint32(n), true
}

func jsTypeOf(v value.Value) string {
	switch v.Type() {
	case value.TypeUndefined, value.TypeEmpty:
		return "undefined"
	case value.TypeNull:
		return "object"
	case value.TypeBoolean:
		return "boolean"
	case value.TypeNumber:
		return "number"
	case value.TypeBigInt:
		return "bigint"
	case value.TypeString:
		return "string"
	case value.TypeSymbol:
		return "symbol"
	case value.TypeObject:
		if obj, ok := object.FromValue(v); ok {
			switch obj.Kind() {
			case object.KindFunction, object.KindNativeFunction, object.KindBoundFunction:
				return "function"
			}
		}
		return "object"
	default:
		return "undefined"
	}
}

func (in *Interpreter) toNumber(v value.Value) float64 {
	if v.Type() == value.TypeObject {
		prim, err := in.toPrimitive(v, "number")
		if err == nil {
			return prim.ToNumber()
		}
	}
	return v.ToNumber()
}

// toPrimitive implements §4.3's to_primitive: consult a toString/valueOf
// pair in hint-determined order. @@toPrimitive is not consulted: object
// properties are string-keyed, so the Symbol.toPrimitive value that
// pkg/runtime installs cannot key a method on an object.
func (in *Interpreter) toPrimitive(v value.Value, hint string) (value.Value, error) {
	if v.Type() != value.TypeObject {
		return v, nil
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, m := range methods {
		fnVal, err := in.getProperty(v, m)
		if err != nil {
			return value.Empty, err
		}
		if fn, ok := object.FromValue(fnVal); ok && (fn.Kind() == object.KindFunction || fn.Kind() == object.KindNativeFunction) {
			result, err := in.Call(fnVal, v, nil)
			if err != nil {
				return value.Empty, err
			}
			if result.Type() != value.TypeObject {
				return result, nil
			}
		}
	}
	return value.Empty, in.Throw("TypeError", "Cannot convert object to primitive value")
}

func (in *Interpreter) evalInfix(e *parser.InfixExpression, env *Environment) (value.Value, error) {
	left, err := in.evalExpression(e.Left, env)
	if err != nil {
		return value.Empty, err
	}
	right, err := in.evalExpression(e.Right, env)
	if err != nil {
		return value.Empty, err
	}
	return in.applyInfix(e.Operator, left, right)
}

func (in *Interpreter) applyInfix(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		return in.evalAdd(left, right)
	case "-":
		return value.Number(in.toNumber(left) - in.toNumber(right)), nil
	case "*":
		return value.Number(in.toNumber(left) * in.toNumber(right)), nil
	case "/":
		return value.Number(in.toNumber(left) / in.toNumber(right)), nil
	case "%":
		return value.Number(math.Mod(in.toNumber(left), in.toNumber(right))), nil
	case "<":
		return in.evalLess(left, right)
	case ">":
		v, err := in.evalLess(right, left)
		return v, err
	case "<=":
		lt, undefined, err := in.relLessThan(right, left)
		if err != nil {
			return value.Empty, err
		}
		if undefined {
			return value.False, nil
		}
		return value.Boolean(!lt), nil
	case ">=":
		lt, undefined, err := in.relLessThan(left, right)
		if err != nil {
			return value.Empty, err
		}
		if undefined {
			return value.False, nil
		}
		return value.Boolean(!lt), nil
	case "==":
		return value.Boolean(in.looseEquals(left, right)), nil
	case "!=":
		return value.Boolean(!in.looseEquals(left, right)), nil
	case "===":
		return value.Boolean(left.StrictlyEquals(right)), nil
	case "!==":
		return value.Boolean(!left.StrictlyEquals(right)), nil
	case "instanceof":
		return in.evalInstanceof(left, right)
	case "in":
		return in.evalIn(left, right)
	case "|":
		return value.Number(float64(toInt32(in.toNumber(left)) | toInt32(in.toNumber(right)))), nil
	default:
		return value.Empty, fmt.Errorf("interpreter: unsupported infix operator %q", op)
	}
}

func (in *Interpreter) evalAdd(left, right value.Value) (value.Value, error) {
	lp, err := in.toPrimitiveLenient(left)
	if err != nil {
		return value.Empty, err
	}
	rp, err := in.toPrimitiveLenient(right)
	if err != nil {
		return value.Empty, err
	}
	if lp.Type() == value.TypeString || rp.Type() == value.TypeString {
		return value.String(lp.ToStringValue() + rp.ToStringValue()), nil
	}
	if lp.Type() == value.TypeBigInt && rp.Type() == value.TypeBigInt {
		result := new(big.Int).Add(lp.AsBigInt(), rp.AsBigInt())
		return value.BigInt(result), nil
	}
	return value.Number(lp.ToNumber() + rp.ToNumber()), nil
}

func (in *Interpreter) toPrimitiveLenient(v value.Value) (value.Value, error) {
	if v.Type() != value.TypeObject {
		return v, nil
	}
	return in.toPrimitive(v, "default")
}

func (in *Interpreter) evalLess(left, right value.Value) (value.Value, error) {
	lt, _, err := in.relLessThan(left, right)
	if err != nil {
		return value.Empty, err
	}
	return value.Boolean(lt), nil
}

// relLessThan is the Abstract Relational Comparison (left < right): undefined
// reports true when either operand's numeric coercion is NaN, the case the
// "<"/">" operators fold into false but "<="/">=" must not silently negate
// into true.
func (in *Interpreter) relLessThan(left, right value.Value) (lessThan bool, undefined bool, err error) {
	lp, err := in.toPrimitiveLenient(left)
	if err != nil {
		return false, false, err
	}
	rp, err := in.toPrimitiveLenient(right)
	if err != nil {
		return false, false, err
	}
	if lp.Type() == value.TypeString && rp.Type() == value.TypeString {
		return lp.AsString() < rp.AsString(), false, nil
	}
	ln, rn := lp.ToNumber(), rp.ToNumber()
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return false, true, nil
	}
	return ln < rn, false, nil
}

func (in *Interpreter) looseEquals(left, right value.Value) bool {
	if left.Type() == right.Type() {
		return left.StrictlyEquals(right)
	}
	if left.IsNullish() && right.IsNullish() {
		return true
	}
	if left.IsNullish() || right.IsNullish() {
		return false
	}
	if left.Type() == value.TypeNumber && right.Type() == value.TypeString {
		return left.AsNumber() == right.ToNumber()
	}
	if left.Type() == value.TypeString && right.Type() == value.TypeNumber {
		return left.ToNumber() == right.AsNumber()
	}
	if left.Type() == value.TypeBoolean {
		return in.looseEquals(value.Number(left.ToNumber()), right)
	}
	if right.Type() == value.TypeBoolean {
		return in.looseEquals(left, value.Number(right.ToNumber()))
	}
	if left.Type() == value.TypeObject {
		prim, err := in.toPrimitiveLenient(left)
		if err == nil {
			return in.looseEquals(prim, right)
		}
	}
	if right.Type() == value.TypeObject {
		prim, err := in.toPrimitiveLenient(right)
		if err == nil {
			return in.looseEquals(left, prim)
		}
	}
	return false
}

func (in *Interpreter) evalInstanceof(left, right value.Value) (value.Value, error) {
	ctor, ok := object.FromValue(right)
	if !ok {
		return value.Empty, in.Throw("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	protoVal, ok := ctor.GetOwn(in.heap, "prototype")
	if !ok {
		return value.False, nil
	}
	if left.Type() != value.TypeObject {
		return value.False, nil
	}
	obj, _ := object.FromValue(left)
	for cur := obj.Prototype(); cur.IsObject(); {
		if cur.StrictlyEquals(protoVal) {
			return value.True, nil
		}
		next, _ := object.FromValue(cur)
		cur = next.Prototype()
	}
	return value.False, nil
}

func (in *Interpreter) evalIn(left, right value.Value) (value.Value, error) {
	obj, ok := object.FromValue(right)
	if !ok {
		return value.Empty, in.Throw("TypeError", "cannot use 'in' operator on non-object")
	}
	name := left.ToStringValue()
	if idx, ok := arrayIndex(name); ok {
		if _, ok := obj.GetIndex(idx); ok {
			return value.True, nil
		}
	}
	for cur := obj; cur != nil; {
		if cur.HasOwn(in.heap, name) {
			return value.True, nil
		}
		protoVal := cur.Prototype()
		if !protoVal.IsObject() {
			break
		}
		cur, _ = object.FromValue(protoVal)
	}
	return value.False, nil
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

// DisplayDiagnostics is a small convenience wrapper the REPL/script drivers
// use to print parser diagnostics through pkg/errors' shared formatter.
func DisplayDiagnostics(src string, diags []errors.Diagnostic) {
	errors.DisplayErrors(src, diags)
}
