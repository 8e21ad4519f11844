package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/wizard"
)

var errNoWizard = errors.New("effect wizard is not available")

func (u *UI) openWizard() error {
	u.mu.Lock()
	newWizard := u.newWizard
	u.mu.Unlock()
	if newWizard == nil {
		return errNoWizard
	}
	w := newWizard(u.closeWizard)

	u.mu.Lock()
	u.wiz = w
	u.wizIndex = 0
	u.overlay = overlayWizard
	u.mu.Unlock()
	return nil
}

// closeWizard is the wizard's back collaborator. It runs outside the
// wizard lock and must not be called with the UI lock held.
func (u *UI) closeWizard() {
	u.mu.Lock()
	u.wiz = nil
	if u.overlay == overlayWizard {
		u.overlay = overlayNone
	}
	u.mu.Unlock()
}

func (u *UI) wizardKey(ctx context.Context, ev *tcell.EventKey) {
	u.mu.Lock()
	w := u.wiz
	idx := u.wizIndex
	catalog := u.catalog
	u.mu.Unlock()
	if w == nil {
		return
	}

	var err error
	switch ev.Key() {
	case tcell.KeyEscape:
		w.Previous()
		idx = 0
	case tcell.KeyUp:
		if idx > 0 {
			idx--
		}
	case tcell.KeyDown:
		if idx < len(wizardRows(w, catalog))-1 {
			idx++
		}
	case tcell.KeyTab:
		if w.Step() == wizard.StepEffectSelection {
			err = w.SkipToReview()
			idx = 0
		}
	case tcell.KeyEnter:
		var done bool
		done, err = u.wizardEnter(ctx, w, catalog, idx)
		idx = 0
		if done {
			u.closeWizard()
		}
	}

	u.mu.Lock()
	u.wizIndex = idx
	u.mu.Unlock()
	u.report(err)
}

// wizardEnter acts on the highlighted row and reports whether the wizard
// finished.
func (u *UI) wizardEnter(ctx context.Context, w *wizard.Wizard, catalog effect.Catalog, idx int) (bool, error) {
	switch w.Step() {
	case wizard.StepTypeSelection:
		if err := w.SelectType(effect.Types[idx]); err != nil {
			return false, err
		}
		return false, w.Next()

	case wizard.StepEffectSelection:
		infos := catalog.ByType(w.Type())
		if idx >= len(infos) {
			return false, nil
		}
		// A defaults failure still selects the effect with an empty
		// config, so carry on and report it afterwards.
		loadErr := w.SelectEffect(ctx, infos[idx])
		if err := w.Next(); err != nil {
			return false, errors.Join(loadErr, err)
		}
		if w.Type() == effect.TypeKeyframe {
			if err := w.SetFrame(u.currentFrame()); err != nil {
				return false, err
			}
		}
		return false, loadErr

	case wizard.StepConfigure:
		return false, w.Next()

	case wizard.StepReview:
		n := w.Buckets().Len()
		if err := w.Finish(ctx); err != nil {
			return false, err
		}
		u.mu.Lock()
		u.message = fmt.Sprintf("wizard added %d effects", n)
		u.mu.Unlock()
		return true, nil
	}
	return false, nil
}

// wizardRows lists what the current step offers.
func wizardRows(w *wizard.Wizard, catalog effect.Catalog) []string {
	var rows []string
	switch w.Step() {
	case wizard.StepTypeSelection:
		for _, t := range effect.Types {
			rows = append(rows, string(t))
		}
	case wizard.StepEffectSelection:
		for _, info := range catalog.ByType(w.Type()) {
			rows = append(rows, info.Label())
		}
	case wizard.StepConfigure:
		cfg := w.Config()
		keys := make([]string, 0, len(cfg))
		for k := range cfg {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			rows = append(rows, fmt.Sprintf("%s: %v", k, cfg[k]))
		}
	case wizard.StepReview:
		b := w.Buckets()
		for _, group := range [][]effect.Effect{b.Primary, b.Secondary, b.KeyFrame, b.Final} {
			for _, e := range group {
				rows = append(rows, effect.DisplayName(e)+" ("+string(e.Type)+")")
			}
		}
	}
	return rows
}

func (u *UI) drawWizardLocked(w, h int) {
	if u.wiz == nil {
		return
	}
	step := u.wiz.Step()
	rows := wizardRows(u.wiz, u.catalog)
	var hint string
	switch step {
	case wizard.StepEffectSelection:
		hint = "enter pick | tab review | esc back"
	case wizard.StepConfigure:
		hint = "enter add | esc back"
	case wizard.StepReview:
		hint = "enter apply | esc back"
	default:
		hint = "enter next | esc close"
	}
	if len(rows) == 0 {
		rows = append(rows, "(nothing here)")
	}
	rows = append(rows, "", hint)
	title := fmt.Sprintf("Effect wizard: %s", step)
	u.drawBoxLocked(w, h, title, rows, u.wizIndex, map[int]bool{len(rows) - 1: true})
}
