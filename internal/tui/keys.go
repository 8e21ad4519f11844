package tui

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/menu"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

var (
	errReadOnly  = errors.New("project is read-only")
	errNoSchemes = errors.New("no color schemes loaded")
)

// HandleKey reacts to a key press and reports whether the user asked to
// quit. The UI lock is never held while emitting, since bus delivery is
// synchronous and handlers call back into the UI.
func (u *UI) HandleKey(ctx context.Context, ev *tcell.EventKey) bool {
	u.mu.Lock()
	mode := u.overlay
	u.mu.Unlock()

	switch mode {
	case overlayPicker:
		u.pickerKey(ctx, ev)
		return false
	case overlayMenu:
		u.menuKey(ctx, ev)
		return false
	case overlayConfig:
		u.configKey(ctx, ev)
		return false
	case overlayWizard:
		u.wizardKey(ctx, ev)
		return false
	}
	return u.listKey(ctx, ev)
}

func (u *UI) listKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		u.move(-1)
		return false
	case tcell.KeyDown:
		u.move(1)
		return false
	case tcell.KeyEnter:
		u.report(u.edit(ctx))
		return false
	case tcell.KeyEscape:
		u.mu.Lock()
		u.lastErr, u.message = "", ""
		u.mu.Unlock()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	r := ev.Rune()
	if u.isReadOnly() && mutates(r) {
		u.report(errReadOnly)
		return false
	}

	var err error
	switch r {
	case 'q':
		return true
	case 'j':
		u.move(1)
	case 'k':
		u.move(-1)
	case 'a':
		err = u.openPicker(effect.TypePrimary)
	case 'F':
		err = u.openPicker(effect.TypeFinalImage)
	case 's':
		err = u.openPicker(effect.TypeSecondary)
	case 'f':
		err = u.openPicker(effect.TypeKeyframe)
	case 'm':
		err = u.rightClick(ctx)
	case 'd':
		err = u.deleteCurrent(ctx)
	case 'J':
		err = u.reorder(ctx, 1)
	case 'K':
		err = u.reorder(ctx, -1)
	case ' ':
		err = u.toggleVisibility(ctx)
	case '[':
		err = u.stepFrame(ctx, -1)
	case ']':
		err = u.stepFrame(ctx, 1)
	case 'r':
		err = u.toolbar.Render(ctx, u.currentFrame())
	case 'l':
		err = u.toolbar.ToggleRenderLoop(ctx)
	case 'u':
		err = u.emitter.Emit(ctx, events.TopicCommandUndo, events.CommandUndo{})
	case 'U':
		err = u.emitter.Emit(ctx, events.TopicCommandRedo, events.CommandRedo{})
	case '+', '=':
		err = u.toolbar.ZoomIn(ctx)
	case '-':
		err = u.toolbar.ZoomOut(ctx)
	case '0':
		err = u.toolbar.ZoomReset(ctx)
	case 'o':
		err = u.toolbar.ToggleOrientation(ctx)
	case 't':
		err = u.nextTheme(ctx)
	case 'R':
		err = u.nextResolution(ctx)
	case '<':
		err = u.changeFrames(ctx, -1)
	case '>':
		err = u.changeFrames(ctx, 1)
	case 'c':
		err = u.nextScheme(ctx)
	case 'w':
		err = u.openWizard()
	}
	u.report(err)
	return false
}

func mutates(r rune) bool {
	switch r {
	case 'a', 'F', 's', 'f', 'd', 'J', 'K', ' ', 'u', 'U', 'o', 'R', '<', '>', 'c', 'w':
		return true
	}
	return false
}

func (u *UI) isReadOnly() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.readOnly
}

func (u *UI) report(err error) {
	if err == nil {
		return
	}
	u.logger.Warn("%v", err)
	u.mu.Lock()
	u.lastErr = err.Error()
	u.mu.Unlock()
}

func (u *UI) move(delta int) {
	u.mu.Lock()
	u.cursor += delta
	u.clampCursorLocked()
	u.mu.Unlock()
}

func (u *UI) currentFrame() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.frame
}

// current returns the effect under the cursor.
func (u *UI) current() (effect.Effect, int, bool) {
	u.mu.Lock()
	i := u.cursor
	u.mu.Unlock()
	e, ok := u.state.EffectAt(i)
	return e, i, ok
}

func (u *UI) edit(ctx context.Context) error {
	e, i, ok := u.current()
	if !ok {
		return nil
	}
	return u.emitter.Emit(ctx, events.TopicPanelEffectEdit, events.EffectEdit{Index: i, Type: e.Type})
}

func (u *UI) deleteCurrent(ctx context.Context) error {
	e, i, ok := u.current()
	if !ok {
		return nil
	}
	return u.emitter.Emit(ctx, events.TopicPanelEffectDelete, events.EffectDelete{EffectID: e.ID, Index: i})
}

func (u *UI) toggleVisibility(ctx context.Context) error {
	e, i, ok := u.current()
	if !ok {
		return nil
	}
	return u.emitter.Emit(ctx, events.TopicPanelEffectToggleVisibility, events.EffectToggleVisibility{EffectID: e.ID, Index: i})
}

// reorder moves the cursor effect by delta and keeps the cursor on it.
func (u *UI) reorder(ctx context.Context, delta int) error {
	_, from, ok := u.current()
	to := from + delta
	if !ok || to < 0 || to >= u.state.EffectCount() {
		return nil
	}
	if err := u.emitter.Emit(ctx, events.TopicPanelEffectReorder, events.EffectReorder{From: from, To: to}); err != nil {
		return err
	}
	u.mu.Lock()
	u.cursor = to
	u.clampCursorLocked()
	u.mu.Unlock()
	return nil
}

func (u *UI) stepFrame(ctx context.Context, delta int) error {
	frame := u.currentFrame() + delta
	if frame < 0 || frame >= u.state.NumFrames() {
		return nil
	}
	return u.toolbar.SelectFrame(ctx, frame)
}

func (u *UI) nextTheme(ctx context.Context) error {
	if u.themes == nil {
		return nil
	}
	names := u.themes.Names()
	if len(names) == 0 {
		return nil
	}
	u.mu.Lock()
	cur := u.theme.Name
	u.mu.Unlock()

	return u.toolbar.ChangeTheme(ctx, cycle(names, cur))
}

// cycle returns the entry after cur in list, or the first entry when cur
// is not in it.
func cycle(list []string, cur string) string {
	for i, s := range list {
		if s == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func (u *UI) nextResolution(ctx context.Context) error {
	all := project.Resolutions()
	keys := make([]string, len(all))
	for i, r := range all {
		keys[i] = r.Key
	}
	return u.toolbar.ChangeResolution(ctx, cycle(keys, u.state.Resolution()))
}

func (u *UI) changeFrames(ctx context.Context, delta int) error {
	n := u.state.NumFrames() + delta
	if n < 1 {
		return nil
	}
	return u.toolbar.ChangeFrames(ctx, n)
}

func (u *UI) nextScheme(ctx context.Context) error {
	u.mu.Lock()
	ids := u.schemes
	u.mu.Unlock()
	if len(ids) == 0 {
		return errNoSchemes
	}
	return u.toolbar.ChangeColorScheme(ctx, cycle(ids, u.state.Snapshot().ColorScheme))
}

func (u *UI) openPicker(t effect.Type) error {
	var parentID string
	if t.IsSub() {
		e, _, ok := u.current()
		if !ok {
			return menu.ErrNoParent
		}
		parentID = e.ID
	}
	u.picker.SetType(t)
	u.picker.SetFilter("")
	u.picker.Target(parentID, u.currentFrame())

	u.mu.Lock()
	u.overlay = overlayPicker
	u.query = ""
	u.pickIndex = 0
	u.mu.Unlock()
	return nil
}

func (u *UI) pickerKey(ctx context.Context, ev *tcell.EventKey) {
	items := u.picker.Items()

	u.mu.Lock()
	switch ev.Key() {
	case tcell.KeyEscape:
		u.overlay = overlayNone
	case tcell.KeyUp:
		if u.pickIndex > 0 {
			u.pickIndex--
		}
	case tcell.KeyDown:
		if u.pickIndex < len(items)-1 {
			u.pickIndex++
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if u.query != "" {
			_, size := utf8.DecodeLastRuneInString(u.query)
			u.query = u.query[:len(u.query)-size]
			u.pickIndex = 0
		}
	case tcell.KeyRune:
		u.query += string(ev.Rune())
		u.pickIndex = 0
	case tcell.KeyEnter:
		u.overlay = overlayNone
		i := u.pickIndex
		u.mu.Unlock()
		if i < len(items) {
			u.report(u.picker.Choose(ctx, items[i]))
		}
		return
	}
	q := u.query
	u.mu.Unlock()
	u.picker.SetFilter(q)
}

// rightClick asks for the context menu of the cursor effect. The menu
// opens when the request comes back from the bus, so other front-ends can
// open it the same way.
func (u *UI) rightClick(ctx context.Context) error {
	e, i, ok := u.current()
	if !ok {
		return nil
	}
	return u.emitter.Emit(ctx, events.TopicPanelEffectRightClick, events.EffectRightClick{EffectID: e.ID, Index: i})
}

func (u *UI) openMenuLocked(p events.EffectRightClick) {
	i := p.Index
	if p.EffectID != "" {
		if idx := u.state.IndexOf(p.EffectID); idx >= 0 {
			i = idx
		}
	}
	e, ok := u.state.EffectAt(i)
	if !ok {
		return
	}

	opts := []menu.Option{menu.AtFrame(u.frame)}
	if u.readOnly {
		opts = append(opts, menu.ReadOnly())
	}
	m := menu.BuildContextMenu(e, i, u.catalog, opts...)

	u.menuRows = u.menuRows[:0]
	for _, it := range m.Items {
		u.menuRows = append(u.menuRows, menuRow{item: it})
		for _, child := range it.Children {
			u.menuRows = append(u.menuRows, menuRow{item: child, depth: 1})
		}
	}
	u.cursor = i
	u.menuIndex = 0
	u.overlay = overlayMenu
}

func (u *UI) menuKey(ctx context.Context, ev *tcell.EventKey) {
	u.mu.Lock()
	switch ev.Key() {
	case tcell.KeyEscape:
		u.overlay = overlayNone
	case tcell.KeyUp:
		if u.menuIndex > 0 {
			u.menuIndex--
		}
	case tcell.KeyDown:
		if u.menuIndex < len(u.menuRows)-1 {
			u.menuIndex++
		}
	case tcell.KeyEnter:
		if u.menuIndex >= len(u.menuRows) {
			break
		}
		it := u.menuRows[u.menuIndex].item
		if it.IsSubmenu() || it.Disabled {
			break
		}
		u.overlay = overlayNone
		u.mu.Unlock()
		u.report(menu.Activate(ctx, u.emitter, it))
		return
	}
	u.mu.Unlock()
}
