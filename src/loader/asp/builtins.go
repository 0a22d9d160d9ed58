package asp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/fs"
)

// registerBuiltins binds every name a build script is allowed to see into
// the root scope: the small set of generic language builtins the
// interpreter needs to be usable at all, plus the five host builtins of
// §4.C that replace the teacher's build_rule family. There is no
// load/subinclude/file-system/network builtin registered anywhere in this
// file; the sandboxing guarantee is that these are the only names that
// ever reach a script's global scope, not a runtime capability check.
func registerBuiltins(s *scope) {
	s.Set("len", simpleBuiltin("len", []string{"obj"}, nil, builtinLen))
	s.Set("str", simpleBuiltin("str", []string{"obj"}, nil, builtinStr))
	s.Set("bool", simpleBuiltin("bool", []string{"obj"}, nil, builtinBool))
	s.Set("sorted", simpleBuiltin("sorted", []string{"iterable"}, nil, builtinSorted))
	s.Set("range", rangeBuiltin())
	s.Set("zip", zipBuiltin())
	s.Set("enumerate", enumerateBuiltin())
	s.Set("print", &pyFunc{name: "print", varargs: true, nativeCode: func(s *scope, args []pyObject) pyObject {
		strs := make([]string, len(args))
		for i, a := range args {
			strs[i] = a.String()
		}
		fmt.Println(strings.Join(strs, " "))
		return None
	}})

	s.Set("add_static_library", hostBuiltin("add_static_library", core.StaticLibrary))
	s.Set("add_shared_library", hostBuiltin("add_shared_library", core.SharedLibrary))
	s.Set("add_executable", hostBuiltin("add_executable", core.Executable))
	s.Set("add_interface_library", hostBuiltin("add_interface_library", core.InterfaceLibrary))
	s.Set("add_object_library", hostBuiltin("add_object_library", core.ObjectLibrary))
}

func registerStringMethods(i *interpreter) {
	i.stringMethods["upper"] = simpleMethod("upper", nil, nil, func(s *scope, args []pyObject) pyObject {
		return pyString(strings.ToUpper(string(args[0].(pyString))))
	})
	i.stringMethods["lower"] = simpleMethod("lower", nil, nil, func(s *scope, args []pyObject) pyObject {
		return pyString(strings.ToLower(string(args[0].(pyString))))
	})
	i.stringMethods["strip"] = simpleMethod("strip", nil, nil, func(s *scope, args []pyObject) pyObject {
		return pyString(strings.TrimSpace(string(args[0].(pyString))))
	})
	i.stringMethods["startswith"] = simpleMethod("startswith", []string{"prefix"}, nil, func(s *scope, args []pyObject) pyObject {
		return newPyBool(strings.HasPrefix(string(args[0].(pyString)), string(mustString(s, args[1], "prefix"))))
	})
	i.stringMethods["endswith"] = simpleMethod("endswith", []string{"suffix"}, nil, func(s *scope, args []pyObject) pyObject {
		return newPyBool(strings.HasSuffix(string(args[0].(pyString)), string(mustString(s, args[1], "suffix"))))
	})
	i.stringMethods["replace"] = simpleMethod("replace", []string{"old", "new"}, nil, func(s *scope, args []pyObject) pyObject {
		old := mustString(s, args[1], "old")
		new := mustString(s, args[2], "new")
		return pyString(strings.ReplaceAll(string(args[0].(pyString)), string(old), string(new)))
	})
	i.stringMethods["split"] = simpleMethod("split", []string{"sep"}, nil, func(s *scope, args []pyObject) pyObject {
		sep := string(mustString(s, args[1], "sep"))
		parts := strings.Split(string(args[0].(pyString)), sep)
		l := make(pyList, len(parts))
		for idx, p := range parts {
			l[idx] = pyString(p)
		}
		return l
	})
	i.stringMethods["join"] = simpleMethod("join", []string{"items"}, nil, func(s *scope, args []pyObject) pyObject {
		base := string(args[0].(pyString))
		items, ok := args[1].(pyList)
		s.Assert(ok, "argument to str.join must be a list")
		parts := make([]string, len(items))
		for idx, v := range items {
			str, ok := v.(pyString)
			s.Assert(ok, "invalid expression of type %s to str.join (must be a string)", v.Type())
			parts[idx] = string(str)
		}
		return pyString(strings.Join(parts, base))
	})
	i.stringMethods["format"] = simpleMethod("format", nil, nil, func(s *scope, args []pyObject) pyObject {
		return args[0]
	})
}

func registerDictMethods(i *interpreter) {
	i.dictMethods["keys"] = simpleMethod("keys", nil, nil, func(s *scope, args []pyObject) pyObject {
		d := args[0].(pyDict)
		keys := d.Keys()
		l := make(pyList, len(keys))
		for idx, k := range keys {
			l[idx] = pyString(k)
		}
		return l
	})
	i.dictMethods["values"] = simpleMethod("values", nil, nil, func(s *scope, args []pyObject) pyObject {
		d := args[0].(pyDict)
		keys := d.Keys()
		l := make(pyList, len(keys))
		for idx, k := range keys {
			l[idx] = d[k]
		}
		return l
	})
	i.dictMethods["get"] = simpleMethod("get", []string{"key", "default"}, nil, func(s *scope, args []pyObject) pyObject {
		d := args[0].(pyDict)
		key, ok := args[1].(pyString)
		s.Assert(ok, "dict key must be a string")
		if v, present := d[string(key)]; present {
			return v
		}
		return args[2]
	})
}

// simpleMethod builds a member function bound later via pyFunc.Member: its
// first declared argument is always the implicit receiver, supplied
// positionally by the caller of Member.
func simpleMethod(name string, args []string, types [][]string, code func(*scope, []pyObject) pyObject) *pyFunc {
	allArgs := append([]string{"self"}, args...)
	return buildNativeFunc(name, allArgs, nil, false, false, false, code)
}

func simpleBuiltin(name string, args []string, types [][]string, code func(*scope, []pyObject) pyObject) *pyFunc {
	return buildNativeFunc(name, args, types, false, false, false, code)
}

func buildNativeFunc(name string, args []string, types [][]string, varargs, kwargs, kwargsonly bool, code func(*scope, []pyObject) pyObject) *pyFunc {
	argIndices := make(map[string]int, len(args))
	for idx, a := range args {
		argIndices[a] = idx
	}
	return &pyFunc{
		name:       name,
		args:       args,
		argIndices: argIndices,
		constants:  make([]pyObject, len(args)),
		types:      types,
		nativeCode: code,
		varargs:    varargs,
		kwargs:     kwargs,
		kwargsonly: kwargsonly,
	}
}

func builtinLen(s *scope, args []pyObject) pyObject {
	it, ok := args[0].(iterable)
	if ok {
		return newPyInt(it.Len())
	}
	s.Error("object of type %s has no len()", args[0].Type())
	return nil
}

func builtinStr(s *scope, args []pyObject) pyObject {
	return pyString(args[0].String())
}

func builtinBool(s *scope, args []pyObject) pyObject {
	return newPyBool(args[0].IsTruthy())
}

func builtinSorted(s *scope, args []pyObject) pyObject {
	it, ok := args[0].(iterable)
	s.Assert(ok, "sorted() requires an iterable argument")
	items := make(pyList, it.Len())
	for i := 0; i < it.Len(); i++ {
		items[i] = it.Item(i)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].String() < items[j].String()
	})
	return items
}

// rangeBuiltin implements Python's range(stop), range(start, stop) and
// range(start, stop, step) forms as a single varargs native function,
// since the arity genuinely varies rather than defaulting trailing
// keyword arguments.
func rangeBuiltin() *pyFunc {
	return buildNativeFunc("range", nil, nil, true, false, false, func(s *scope, args []pyObject) pyObject {
		s.Assert(len(args) >= 1 && len(args) <= 3, "range() takes 1 to 3 arguments")
		toInt := func(o pyObject) pyInt {
			i, ok := o.(pyInt)
			s.Assert(ok, "range() arguments must be integers")
			return i
		}
		start, stop, step := pyInt(0), toInt(args[0]), pyInt(1)
		if len(args) >= 2 {
			start, stop = toInt(args[0]), toInt(args[1])
		}
		if len(args) == 3 {
			step = toInt(args[2])
		}
		return &pyRange{Start: start, Stop: stop, Step: step}
	})
}

func zipBuiltin() *pyFunc {
	f := buildNativeFunc("zip", nil, nil, true, false, false, func(s *scope, args []pyObject) pyObject {
		iters := make([]iterable, len(args))
		shortest := -1
		for idx, a := range args {
			it, ok := a.(iterable)
			s.Assert(ok, "zip() arguments must be iterable")
			iters[idx] = it
			if shortest == -1 || it.Len() < shortest {
				shortest = it.Len()
			}
		}
		if shortest < 0 {
			shortest = 0
		}
		out := make(pyList, shortest)
		for i := 0; i < shortest; i++ {
			tuple := make(pyList, len(iters))
			for j, it := range iters {
				tuple[j] = it.Item(i)
			}
			out[i] = tuple
		}
		return out
	})
	return f
}

func enumerateBuiltin() *pyFunc {
	return buildNativeFunc("enumerate", []string{"iterable"}, nil, false, false, false, func(s *scope, args []pyObject) pyObject {
		it, ok := args[0].(iterable)
		s.Assert(ok, "enumerate() requires an iterable argument")
		out := make(pyList, it.Len())
		for i := 0; i < it.Len(); i++ {
			out[i] = pyList{newPyInt(i), it.Item(i)}
		}
		return out
	})
}

// hostBuiltin builds one of the five target-constructing builtins: they
// all share the keyword-argument schema of spec §4.C and differ only in
// the TargetKind they construct.
func hostBuiltin(name string, kind core.TargetKind) *pyFunc {
	args := []string{
		"name",
		"sources",
		"include_dirs_public", "include_dirs_private",
		"defines_public", "defines_private",
		"compile_flags_public", "compile_flags_private",
		"link_public", "link_private", "links",
		"link_flags_public", "link_flags_private",
	}
	f := buildNativeFunc(name, args, nil, false, false, true, func(s *scope, callArgs []pyObject) pyObject {
		return constructTarget(name, kind, s, callArgs)
	})
	// Every argument but name defaults to an empty list.
	for i := 1; i < len(args); i++ {
		f.constants[i] = emptyList
	}
	return f
}

// constructTarget implements the validate/normalize/classify/construct/
// register pipeline of spec §4.C, shared by all five host builtins.
func constructTarget(builtin string, kind core.TargetKind, s *scope, args []pyObject) pyObject {
	name := string(mustString(s, args[0], "name"))
	s.NAssert(name == "", "name is required")

	sources := mustStringList(s, builtin, args[1], "sources")
	s.NAssert(!kind.HasSources() && len(sources) > 0, "%s cannot declare sources", kind)

	includePub := mustStringList(s, builtin, args[2], "include_dirs_public")
	includePriv := mustStringList(s, builtin, args[3], "include_dirs_private")
	definesPub := mustStringList(s, builtin, args[4], "defines_public")
	definesPriv := mustStringList(s, builtin, args[5], "defines_private")
	cflagsPub := mustStringList(s, builtin, args[6], "compile_flags_public")
	cflagsPriv := mustStringList(s, builtin, args[7], "compile_flags_private")
	linkPub := mustTargetList(s, builtin, args[8], "link_public")
	linkPriv := mustTargetList(s, builtin, args[9], "link_private")
	links := mustTargetList(s, builtin, args[10], "links")
	linkFlagsPub := mustStringList(s, builtin, args[11], "link_flags_public")
	linkFlagsPriv := mustStringList(s, builtin, args[12], "link_flags_private")

	// links is sugar for link_private.
	linkPriv = append(linkPriv, links...)

	srcs := make([]core.Source, len(sources))
	for idx, p := range sources {
		srcs[idx] = core.NewSource(fs.Normalize(s.dir, p))
	}

	t := core.NewTarget(kind, name, s.dir, srcs,
		normalizeAll(s.dir, includePriv), normalizeAll(s.dir, includePub),
		definesPriv, definesPub,
		cflagsPriv, cflagsPub,
		linkPriv, linkPub,
		linkFlagsPriv, linkFlagsPub,
	)

	if err := s.g.AddTarget(t); err != nil {
		panic(err)
	}
	s.project.AddTarget(t)
	return newPyTarget(t)
}

func normalizeAll(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = fs.Normalize(dir, p)
	}
	return out
}

func mustString(s *scope, obj pyObject, argName string) pyString {
	str, ok := obj.(pyString)
	s.Assert(ok, "%s must be a string, not %s", argName, obj.Type())
	return str
}

// mustStringList validates that obj is a list of strings, raising a
// HostContract error naming the builtin, the argument and the offending
// positional index if not.
func mustStringList(s *scope, builtin string, obj pyObject, argName string) []string {
	l, ok := obj.(pyList)
	if !ok {
		if fl, ok2 := obj.(pyFrozenList); ok2 {
			l = fl.pyList
		} else {
			panic(&caterr.HostContract{Builtin: builtin, Message: argName + " must be a list"})
		}
	}
	out := make([]string, len(l))
	for i, v := range l {
		str, ok := v.(pyString)
		if !ok {
			panic(&caterr.HostContract{Builtin: builtin, Message: fmt.Sprintf("%s[%d] must be a string, not %s", argName, i, v.Type())})
		}
		out[i] = string(str)
	}
	return out
}

// mustTargetList validates that obj is a list of Target values, as
// required for any link_* argument: a string in this position is a
// HostContract violation naming the offending index, per spec §4.C.1.
func mustTargetList(s *scope, builtin string, obj pyObject, argName string) []*core.Target {
	l, ok := obj.(pyList)
	if !ok {
		if fl, ok2 := obj.(pyFrozenList); ok2 {
			l = fl.pyList
		} else {
			panic(&caterr.HostContract{Builtin: builtin, Message: argName + " must be a list"})
		}
	}
	out := make([]*core.Target, len(l))
	for i, v := range l {
		pt, ok := v.(*pyTarget)
		if !ok {
			panic(&caterr.HostContract{Builtin: builtin, Message: fmt.Sprintf("%s[%d] must be a Target, not %s", argName, i, v.Type())})
		}
		out[i] = pt.t
	}
	return out
}
