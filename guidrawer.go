package vkb

import (
	"fmt"

	imgui "github.com/inkyblackness/imgui-go/v2"
)

// Drawer wraps the imgui widget calls an overlay typically needs and tracks
// whether any widget changed a value this frame, so the application knows
// when to rebuild whatever the widgets control.
type Drawer struct {
	dirty bool
}

// Clear resets the dirty flag. Call at the start of a frame.
func (d *Drawer) Clear() {
	d.dirty = false
}

// Dirty reports whether any widget changed a value since the last Clear.
func (d *Drawer) Dirty() bool {
	return d.dirty
}

// SetDirty marks the frame dirty directly.
func (d *Drawer) SetDirty() {
	d.dirty = true
}

// Header draws a collapsable header and returns whether it is open.
func (d *Drawer) Header(caption string) bool {
	return imgui.CollapsingHeader(caption)
}

// Checkbox draws a checkbox bound to value, returning true on change.
func (d *Drawer) Checkbox(caption string, value *bool) bool {
	res := imgui.Checkbox(caption, value)
	if res {
		d.dirty = true
	}
	return res
}

// SliderFloat draws a float slider bound to value, returning true on change.
func (d *Drawer) SliderFloat(caption string, value *float32, min, max float32) bool {
	res := imgui.SliderFloat(caption, value, min, max)
	if res {
		d.dirty = true
	}
	return res
}

// SliderInt draws an int slider bound to value, returning true on change.
func (d *Drawer) SliderInt(caption string, value *int32, min, max int32) bool {
	res := imgui.SliderInt(caption, value, min, max)
	if res {
		d.dirty = true
	}
	return res
}

// ComboBox draws a combo box over items bound to itemIndex, returning true
// when the selection changed.
func (d *Drawer) ComboBox(caption string, itemIndex *int32, items []string) bool {
	if len(items) == 0 {
		return false
	}
	if *itemIndex < 0 || int(*itemIndex) >= len(items) {
		*itemIndex = 0
	}

	changed := false
	if imgui.BeginCombo(caption, items[*itemIndex]) {
		for i, item := range items {
			selected := int32(i) == *itemIndex
			if imgui.SelectableV(item, selected, 0, imgui.Vec2{}) {
				*itemIndex = int32(i)
				changed = true
			}
		}
		imgui.EndCombo()
	}

	if changed {
		d.dirty = true
	}
	return changed
}

// Button draws a button and returns whether it was pressed.
func (d *Drawer) Button(caption string) bool {
	res := imgui.Button(caption)
	if res {
		d.dirty = true
	}
	return res
}

// Text draws formatted static text.
func (d *Drawer) Text(format string, args ...interface{}) {
	imgui.Text(fmt.Sprintf(format, args...))
}
