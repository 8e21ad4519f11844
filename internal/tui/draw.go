package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
)

// Draw repaints the whole screen.
func (u *UI) Draw() {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := u.screen
	th := u.theme
	w, h := s.Size()

	s.SetStyle(th.Base())
	s.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	fill(s, 0, 0, w, th.Title())
	puts(s, 1, 0, w-1, th.Title(), "NFT Studio | "+u.state.Name())

	u.drawEffectsLocked(1, h-2)
	u.drawStatusLocked(h-1, w)

	switch u.overlay {
	case overlayPicker:
		u.drawPickerLocked(w, h)
	case overlayMenu:
		u.drawMenuLocked(w, h)
	case overlayConfig:
		u.drawConfigLocked(w, h)
	case overlayWizard:
		u.drawWizardLocked(w, h)
	}
	s.Show()
}

func (u *UI) drawEffectsLocked(top, bottom int) {
	s := u.screen
	th := u.theme
	w, _ := s.Size()

	effects := u.state.Effects()
	if len(effects) == 0 {
		puts(s, 2, top, w, th.Muted(), "No effects. Press a to add one.")
		return
	}

	selectedID := ""
	if u.sel != nil {
		if ref, ok := u.sel.Current(); ok {
			selectedID = ref.EffectID
		}
	}

	y := top
	for i, e := range effects {
		if y >= bottom {
			return
		}
		style := th.Panel()
		if i == u.cursor {
			style = th.Selected()
			fill(s, 0, y, w, style)
		}
		puts(s, 0, y, w, style, effectLine(e, i == u.cursor, e.ID == selectedID))
		y++

		for _, sub := range e.SecondaryEffects {
			if y >= bottom {
				return
			}
			puts(s, 6, y, w, th.Sub(), "+ "+effect.DisplayName(sub)+hidden(sub))
			y++
		}
		for _, kf := range e.KeyframeEffects {
			if y >= bottom {
				return
			}
			puts(s, 6, y, w, th.Sub(), fmt.Sprintf("@%d %s%s", kf.Frame, effect.DisplayName(kf), hidden(kf)))
			y++
		}
	}
}

func effectLine(e effect.Effect, cursor, selected bool) string {
	var b strings.Builder
	if cursor {
		b.WriteString("> ")
	} else {
		b.WriteString("  ")
	}
	if e.Visible {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(effect.DisplayName(e))
	if e.Type != effect.TypePrimary {
		b.WriteString(" (" + string(e.Type) + ")")
	}
	if selected {
		b.WriteString(" *")
	}
	return b.String()
}

func hidden(e effect.Effect) string {
	if e.Visible {
		return ""
	}
	return " (hidden)"
}

func (u *UI) drawStatusLocked(y, w int) {
	s := u.screen
	th := u.theme

	orientation := "horizontal"
	if !u.state.IsHorizontal() {
		orientation = "vertical"
	}
	width, height := u.state.Dimensions()
	parts := []string{
		fmt.Sprintf("%s %dx%d", u.state.Resolution(), width, height),
		orientation,
		fmt.Sprintf("frame %d/%d", u.frame, u.state.NumFrames()),
		fmt.Sprintf("zoom %.0f%%", u.zoom*100),
	}
	if u.rendering {
		parts = append(parts, "Rendering...")
	}
	if u.looping {
		parts = append(parts, "loop")
	}

	fill(s, 0, y, w, th.Status())
	x := puts(s, 1, y, w, th.Status(), strings.Join(parts, " | "))
	switch {
	case u.lastErr != "":
		puts(s, x+3, y, w, th.ErrorStyle(), "error: "+u.lastErr)
	case u.message != "":
		puts(s, x+3, y, w, th.Muted(), u.message)
	}
}

func (u *UI) drawPickerLocked(w, h int) {
	items := u.picker.Items()
	lines := make([]string, 0, len(items))
	for _, info := range items {
		lines = append(lines, info.Label())
	}
	if len(lines) == 0 {
		lines = append(lines, "(no matching effects)")
	}
	title := "Add effect: " + u.query
	u.drawBoxLocked(w, h, title, lines, u.pickIndex, nil)
}

func (u *UI) drawMenuLocked(w, h int) {
	lines := make([]string, len(u.menuRows))
	disabled := make(map[int]bool)
	for i, row := range u.menuRows {
		label := row.item.Label
		if row.item.IsSubmenu() {
			label += " >"
		}
		lines[i] = strings.Repeat("  ", row.depth) + label
		disabled[i] = row.item.Disabled
	}
	u.drawBoxLocked(w, h, "Effect", lines, u.menuIndex, disabled)
}

func (u *UI) drawBoxLocked(w, h int, title string, lines []string, active int, disabled map[int]bool) {
	s := u.screen
	th := u.theme

	bw := len(title) + 4
	for _, l := range lines {
		if len(l)+4 > bw {
			bw = len(l) + 4
		}
	}
	bw = min(bw, w)
	bh := min(len(lines)+2, h)
	x0, y0 := (w-bw)/2, (h-bh)/2

	for y := y0; y < y0+bh; y++ {
		fill(s, x0, y, x0+bw, th.Panel())
	}
	puts(s, x0+1, y0, x0+bw-1, th.Title(), title)
	for i, l := range lines {
		y := y0 + 1 + i
		if y >= y0+bh {
			break
		}
		style := th.Panel()
		switch {
		case disabled[i]:
			style = th.Muted()
		case i == active:
			style = th.Selected()
		}
		puts(s, x0+2, y, x0+bw-1, style, l)
	}
}

// puts writes str at (x, y), stopping before column limit, and returns
// the column after the last rune written.
func puts(s tcell.Screen, x, y, limit int, style tcell.Style, str string) int {
	for _, r := range str {
		if x >= limit {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func fill(s tcell.Screen, x, y, limit int, style tcell.Style) {
	for ; x < limit; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}
