package ui

import (
	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/pager"
)

// binding is what a key does in normal mode
type binding int

const (
	bindNone binding = iota
	bindQuit
	bindTop
	bindBottom
	bindPercent
	bindSearchForward
	bindSearchBackward
	bindSetMark
	bindGotoMark
	bindEdit
	bindGotoPrompt
	bindAction // plain pager action, see keyMap.actions
)

// keyMap resolves key names as reported by tea.KeyMsg.String()
type keyMap struct {
	bindings map[string]binding
	actions  map[string]pager.Action
}

func newKeyMap(kb config.KeybindingConfig) keyMap {
	km := keyMap{
		bindings: make(map[string]binding),
		actions:  make(map[string]pager.Action),
	}

	bind := func(keys []string, b binding) {
		for _, k := range keys {
			km.bindings[k] = b
		}
	}
	act := func(keys []string, a pager.Action) {
		for _, k := range keys {
			km.bindings[k] = bindAction
			km.actions[k] = a
		}
	}

	bind(kb.Quit, bindQuit)
	bind(kb.Top, bindTop)
	bind(kb.Bottom, bindBottom)
	bind(kb.Percent, bindPercent)
	bind(kb.SearchForward, bindSearchForward)
	bind(kb.SearchBackward, bindSearchBackward)
	bind(kb.SetMark, bindSetMark)
	bind(kb.GotoMark, bindGotoMark)
	bind(kb.Edit, bindEdit)
	bind([]string{":"}, bindGotoPrompt)

	act(kb.LineDown, pager.ActionLineForward)
	act(kb.LineUp, pager.ActionLineBackward)
	act(kb.PageDown, pager.ActionPageForward)
	act(kb.PageUp, pager.ActionPageBackward)
	act(kb.HalfPageDown, pager.ActionHalfPageForward)
	act(kb.HalfPageUp, pager.ActionHalfPageBackward)
	act(kb.NextMatch, pager.ActionRepeatSearch)
	act(kb.PrevMatch, pager.ActionRepeatSearchReverse)
	act(kb.NextFile, pager.ActionNextFile)
	act(kb.PrevFile, pager.ActionPrevFile)
	act(kb.ToggleSqueeze, pager.ActionToggleSqueeze)
	act(kb.ToggleIgnoreCase, pager.ActionToggleIgnoreCase)
	act(kb.ToggleVerbose, pager.ActionToggleVerbose)
	act(kb.Redraw, pager.ActionRedraw)

	return km
}

// lookup returns the binding for key and, for bindAction, its action
func (km keyMap) lookup(key string) (binding, pager.Action) {
	b, ok := km.bindings[key]
	if !ok {
		return bindNone, pager.ActionNone
	}
	return b, km.actions[key]
}
