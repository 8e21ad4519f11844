package theme

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestBuiltInsValid(t *testing.T) {
	for _, th := range BuiltIns() {
		if err := th.Validate(); err != nil {
			t.Errorf("%s: %v", th.Name, err)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{Dark, Light, Cyberpunk} {
		if !r.Has(name) {
			t.Errorf("missing %s", name)
		}
	}
	if r.Has("sepia") {
		t.Error("unknown theme reported")
	}
	if _, err := r.Get("sepia"); !errors.Is(err, ErrUnknown) {
		t.Errorf("err = %v", err)
	}

	bad := Theme{Name: "broken", Palette: Palette{Background: "black"}}
	if err := r.Register(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Register(bad) err = %v", err)
	}

	sepia := BuiltIns()[1]
	sepia.Name = "sepia"
	sepia.Palette.Background = "#f4ecd8"
	if err := r.Register(sepia); err != nil {
		t.Fatal(err)
	}
	want := []string{Cyberpunk, Dark, Light, "sepia"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestColor(t *testing.T) {
	if got := Color("#ff0000"); got != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("Color(#ff0000) = %v", got)
	}
	if got := Color("nope"); got != tcell.ColorDefault {
		t.Errorf("Color(nope) = %v, want default", got)
	}
}

func TestReadable(t *testing.T) {
	tests := []struct {
		bg   string
		want string
	}{
		{"#ffffff", "#000000"},
		{"#fafafa", "#000000"},
		{"#000000", "#ffffff"},
		{"#0a0014", "#ffffff"},
		{"garbage", "#ffffff"},
	}
	for _, tt := range tests {
		if got := Readable(tt.bg); got != tt.want {
			t.Errorf("Readable(%q) = %q, want %q", tt.bg, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("Blend t=0 = %q", got)
	}
	if got := Blend("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("Blend t=1 = %q", got)
	}
	if got := Blend("bad", "#123456", 0.5); got != "#123456" {
		t.Errorf("Blend with bad input = %q", got)
	}
}

func TestStyles(t *testing.T) {
	th, _ := NewRegistry().Get(Dark)
	fg, bg, _ := th.Base().Decompose()
	if fg != Color(th.Palette.Text) || bg != Color(th.Palette.Background) {
		t.Errorf("Base() = %v on %v", fg, bg)
	}
	_, _, attrs := th.Selected().Decompose()
	if attrs&tcell.AttrBold == 0 {
		t.Error("Selected() not bold")
	}
}
