package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/selection"
)

const configErrorTitle = "Effect Configuration Error"

var errNotEditable = errors.New("value cannot be edited as text")

// configPanel is the state of the config overlay. It shows the selected
// effect's config one key per row; enter edits a scalar value in place.
type configPanel struct {
	title   string
	failed  bool
	keys    []string
	values  effect.Config
	index   int
	editing bool
	buf     string
}

func (u *UI) openConfigLocked() {
	if u.sel == nil {
		return
	}
	data, err := u.sel.SelectedEffectData()
	switch {
	case errors.Is(err, selection.ErrNoSelection):
		return
	case err != nil:
		u.logger.Warn("config panel: %v", err)
		u.config = configPanel{title: configErrorTitle, failed: true}
	default:
		title := "Configure " + effect.DisplayName(*data)
		if data.Type != effect.TypePrimary {
			title += " (" + string(data.Type) + ")"
		}
		values := data.Config.Clone()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		u.config = configPanel{title: title, keys: keys, values: values}
	}
	u.overlay = overlayConfig
}

func (u *UI) configKey(ctx context.Context, ev *tcell.EventKey) {
	u.mu.Lock()
	c := &u.config
	if c.editing {
		switch ev.Key() {
		case tcell.KeyEscape:
			c.editing = false
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if c.buf != "" {
				_, size := utf8.DecodeLastRuneInString(c.buf)
				c.buf = c.buf[:len(c.buf)-size]
			}
		case tcell.KeyRune:
			c.buf += string(ev.Rune())
		case tcell.KeyEnter:
			u.mu.Unlock()
			u.report(u.commitConfig(ctx))
			return
		}
		u.mu.Unlock()
		return
	}

	var err error
	switch ev.Key() {
	case tcell.KeyEscape:
		u.overlay = overlayNone
	case tcell.KeyUp:
		if c.index > 0 {
			c.index--
		}
	case tcell.KeyDown:
		if c.index < len(c.keys)-1 {
			c.index++
		}
	case tcell.KeyEnter:
		switch {
		case c.failed || len(c.keys) == 0:
		case u.readOnly:
			err = errReadOnly
		default:
			v := c.values[c.keys[c.index]]
			if !scalar(v) {
				err = fmt.Errorf("%s: %w", c.keys[c.index], errNotEditable)
				break
			}
			c.editing = true
			c.buf = fmt.Sprint(v)
		}
	}
	u.mu.Unlock()
	u.report(err)
}

// commitConfig parses the edit buffer against the old value's type and
// sends the whole config through the selector.
func (u *UI) commitConfig(ctx context.Context) error {
	u.mu.Lock()
	c := &u.config
	c.editing = false
	key := c.keys[c.index]
	old := c.values[key]
	raw := c.buf
	cfg := c.values.Clone()
	u.mu.Unlock()

	v, err := parseValue(raw, old)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	cfg[key] = v
	if err := u.sel.ConfigChange(ctx, cfg); err != nil {
		return err
	}

	u.mu.Lock()
	if u.overlay == overlayConfig {
		u.config.values = cfg
	}
	u.mu.Unlock()
	return nil
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, bool, int, int64, float64, string:
		return true
	}
	return false
}

func parseValue(raw string, old any) (any, error) {
	switch old.(type) {
	case bool:
		return strconv.ParseBool(raw)
	case int:
		return strconv.Atoi(raw)
	case int64:
		return strconv.ParseInt(raw, 10, 64)
	case float64:
		return strconv.ParseFloat(raw, 64)
	case nil, string:
		return raw, nil
	}
	return nil, errNotEditable
}

func (u *UI) drawConfigLocked(w, h int) {
	c := u.config
	if c.failed {
		lines := []string{"The selected effect no longer exists.", "Press esc to close."}
		u.drawBoxLocked(w, h, c.title, lines, -1, nil)
		return
	}
	lines := make([]string, len(c.keys))
	for i, k := range c.keys {
		if c.editing && i == c.index {
			lines[i] = k + ": " + c.buf + "_"
			continue
		}
		lines[i] = fmt.Sprintf("%s: %v", k, c.values[k])
	}
	if len(lines) == 0 {
		lines = append(lines, "(no settings)")
	}
	u.drawBoxLocked(w, h, c.title, lines, c.index, nil)
}
