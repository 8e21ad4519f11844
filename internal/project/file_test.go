package project

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
)

func TestDecodeYAMLAndJSON(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"yaml", `
projectName: Demo
targetResolution: 4k
isHorizontal: true
numFrames: 60
effects:
  - id: e1
    name: FuzzFlareEffect
    type: primary
    visible: true
    config:
      center: {x: 10, y: 20}
`},
		{"json", `{"projectName":"Demo","targetResolution":"4k","isHorizontal":true,"numFrames":60,
"effects":[{"id":"e1","name":"FuzzFlareEffect","type":"primary","visible":true,"config":{"center":{"x":10,"y":20}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if snap.Name != "Demo" || snap.Resolution != "4k" || snap.NumFrames != 60 {
				t.Errorf("snapshot = %+v", snap)
			}
			if len(snap.Effects) != 1 || snap.Effects[0].ID != "e1" {
				t.Fatalf("effects = %+v", snap.Effects)
			}
			if snap.RenderEnd != 60 {
				t.Errorf("RenderEnd = %d", snap.RenderEnd)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestSaveLoadFile(t *testing.T) {
	dir := t.TempDir()
	snap := DefaultSnapshot()
	snap.Name = "Roundtrip"
	snap.Effects = []effect.Effect{effect.New("Glow", effect.TypePrimary, effect.Config{"amp": 2})}

	for _, name := range []string{"p.yaml", "p.json"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, snap); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Name != "Roundtrip" || len(got.Effects) != 1 || got.Effects[0].ID != snap.Effects[0].ID {
			t.Errorf("%s: loaded %+v", name, got)
		}
	}
}
