package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func TestStateSandbox(t *testing.T) {
	st := NewState()
	defer st.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug"} {
		code := "assert(" + name + " == nil, '" + name + " should be removed')"
		if err := st.DoString(context.Background(), code); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	if err := st.DoString(context.Background(), `x = math.floor(string.len("abc") * 1.5)`); err != nil {
		t.Fatalf("safe libraries: %v", err)
	}
	if got := st.Global("x"); got != int64(4) {
		t.Errorf("x = %v (%T), want 4", got, got)
	}
}

func TestStateCallTimeout(t *testing.T) {
	st := NewState(WithStateCallTimeout(50 * time.Millisecond))
	defer st.Close()

	if err := st.DoString(context.Background(), `function spin() while true do end end`); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := st.Call(context.Background(), "spin", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestStateCall(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString(context.Background(), `function add(a, b) return a + b, "ok" end`); err != nil {
		t.Fatal(err)
	}

	ret, err := st.Call(context.Background(), "add", func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(2), lua.LNumber(3)}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 2 || ret[0] != lua.LNumber(5) || ret[1] != lua.LString("ok") {
		t.Errorf("ret = %v", ret)
	}

	if _, err := st.Call(context.Background(), "missing", nil); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing function: %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	st := NewState()
	st.Close()

	if err := st.DoString(context.Background(), "x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v", err)
	}
	if st.HasFunction("print") {
		t.Error("closed state reports functions")
	}
	if err := st.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	st := NewState()
	defer st.Close()

	in := map[string]any{
		"radius": 12,
		"alpha":  0.5,
		"name":   "glow",
		"on":     true,
		"center": map[string]any{"x": 960, "y": 540},
		"colors": []string{"#ff0000", "#00ff00"},
		"empty":  map[string]any{},
	}
	st.L.SetGlobal("cfg", toLua(st.L, in))
	got, ok := st.Global("cfg").(map[string]any)
	if !ok {
		t.Fatalf("cfg = %T", st.Global("cfg"))
	}

	if got["radius"] != int64(12) || got["alpha"] != 0.5 || got["name"] != "glow" || got["on"] != true {
		t.Errorf("scalars = %v", got)
	}
	center, _ := got["center"].(map[string]any)
	if center["x"] != int64(960) {
		t.Errorf("center = %v", got["center"])
	}
	colors, _ := got["colors"].([]any)
	if len(colors) != 2 || colors[1] != "#00ff00" {
		t.Errorf("colors = %v", got["colors"])
	}
	if empty, ok := got["empty"].(map[string]any); !ok || len(empty) != 0 {
		t.Errorf("empty = %#v", got["empty"])
	}
}
