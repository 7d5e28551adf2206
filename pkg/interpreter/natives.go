package interpreter

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	lowerCaser   = cases.Lower(language.Und)
	upperCaser   = cases.Upper(language.Und)
)

// nativeFunctions is the built-in surface bound in the global scope. Method
// style calls (arr.indexOf(x)) reach the same entries with the receiver as
// the first argument.
func nativeFunctions() []*runtime.NativeFunction {
	return []*runtime.NativeFunction{
		runtime.NewNativeFunction("parseInt", 1, nativeParseInt),
		runtime.NewNativeFunction("parsefloat", 1, nativeParseFloat),
		runtime.NewNativeFunction("toString", 1, nativeToString),
		runtime.NewNativeFunction("toLowerCase", 1, func(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
			s, err := stringArg(args[0], loc)
			if err != nil {
				return nil, err
			}
			return runtime.String(lowerCaser.String(s)), nil
		}),
		runtime.NewNativeFunction("toUpperCase", 1, func(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
			s, err := stringArg(args[0], loc)
			if err != nil {
				return nil, err
			}
			return runtime.String(upperCaser.String(s)), nil
		}),
		runtime.NewNativeFunction("typeof", 1, func(_ runtime.Invoker, args []runtime.Literal, _ ast.Span) (runtime.Value, error) {
			return runtime.String(args[0].Type), nil
		}),
		runtime.NewNativeFunction("System.out.println", 1, func(ctx runtime.Invoker, args []runtime.Literal, _ ast.Span) (runtime.Value, error) {
			ctx.Write(strings.Join(appendPrinted(nil, args[0]), " ") + "\n")
			return nil, nil
		}),
		runtime.NewNativeFunction("indexOf", 2, nativeIndexOf),
		runtime.NewNativeFunction("join", 1, nativeJoin),
		runtime.NewNativeFunction("Object.keys", 1, nativeObjectKeys),
	}
}

func stringArg(arg runtime.Literal, loc ast.Span) (string, error) {
	s, ok := arg.Value.(string)
	if !ok || arg.Type != runtime.TypeString {
		return "", runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be a string, got %s", arg.Type)
	}
	return s, nil
}

func nativeParseInt(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	s, err := stringArg(args[0], loc)
	if err != nil {
		return nil, err
	}
	digits := leadingInt.FindString(strings.TrimSpace(s))
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be a number: %q", s)
	}
	return runtime.Int(n), nil
}

func nativeParseFloat(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	s, err := stringArg(args[0], loc)
	if err != nil {
		return nil, err
	}
	digits := leadingFloat.FindString(strings.TrimSpace(s))
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be a number: %q", s)
	}
	return runtime.Float(f), nil
}

func nativeToString(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	arg := args[0]
	switch arg.Type {
	case runtime.TypeString, runtime.TypeInt, runtime.TypeFloat, runtime.TypeBool, runtime.TypeChar:
		return runtime.String(arg.String()), nil
	}
	return nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot convert %s to string", arg.Type)
}

func arrayArg(arg runtime.Literal, loc ast.Span) (*runtime.ArrayListInstance, error) {
	arr, ok := arg.Value.(*runtime.ArrayListInstance)
	if !ok {
		return nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be an array, got %s", arg.Type)
	}
	return arr, nil
}

func nativeIndexOf(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	arr, err := arrayArg(args[0], loc)
	if err != nil {
		return nil, err
	}
	needle := args[1]
	for idx, el := range arr.Elements {
		if el.Type == needle.Type && el.Equal(needle) {
			return runtime.Int(int64(idx)), nil
		}
	}
	return runtime.Int(-1), nil
}

func nativeJoin(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	arr, err := arrayArg(args[0], loc)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr.Elements))
	for idx, el := range arr.Elements {
		parts[idx] = el.String()
	}
	return runtime.String(strings.Join(parts, ",")), nil
}

func nativeObjectKeys(_ runtime.Invoker, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	inst, ok := args[0].Value.(*runtime.StructInstance)
	if !ok {
		return nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Object.keys expects a struct, got %s", args[0].Type)
	}
	return runtime.String("[" + strings.Join(inst.Fields(), ", ") + "]"), nil
}
