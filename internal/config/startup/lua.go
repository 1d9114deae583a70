package startup

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// luaBlocked are base library functions removed before a script runs.
var luaBlocked = []string{"dofile", "loadfile", "load", "loadstring"}

// RunLua runs an init.lua chunk. name labels the chunk in error messages.
func (in *Interpreter) RunLua(ctx context.Context, name, code string) error {
	L := newLuaState()
	defer L.Close()
	L.SetContext(ctx)

	L.SetGlobal("wolfedit", in.luaModule(ctx, L))

	fn, err := L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}

	return runRecovered(func() error {
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

func newLuaState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range luaBlocked {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (in *Interpreter) luaModule(ctx context.Context, L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"set": func(L *lua.LState) int {
			word, err := setWord(L.CheckString(1), L.Get(2))
			if err == nil {
				err = in.set(word)
			}
			if err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"get": func(L *lua.LState) int {
			o, ok := lookupOption(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			if o.kind == intOption {
				L.Push(lua.LNumber(in.getInt(o.name)))
			} else {
				L.Push(lua.LBool(in.getBool(o.name)))
			}
			return 1
		},
		"command": func(L *lua.LState) int {
			if err := in.exec(ctx, L.CheckString(1)); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
	})
	return mod
}

// setWord turns wolfedit.set(name, value) into the equivalent "set" word.
func setWord(name string, value lua.LValue) (string, error) {
	switch v := value.(type) {
	case *lua.LNilType:
		return name, nil
	case lua.LBool:
		if v {
			return name, nil
		}
		return "no" + name, nil
	case lua.LNumber:
		f := float64(v)
		if f != float64(int(f)) {
			return "", fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, f)
		}
		return name + "=" + strconv.Itoa(int(f)), nil
	case lua.LString:
		return name + "=" + string(v), nil
	default:
		return "", fmt.Errorf("%w: %s has type %s", ErrInvalidValue, name, value.Type())
	}
}
