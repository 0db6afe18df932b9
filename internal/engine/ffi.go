//go:build goxviet_core

package engine

/*
#cgo LDFLAGS: -lgoxviet_core
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct {
    uint32_t *chars;
    size_t capacity;
    uint8_t action;
    uint8_t backspace;
    uint8_t count;
    uint8_t _pad;
} ImeResult;

void ime_init(void);
ImeResult *ime_key(uint16_t key, bool caps, bool ctrl);
ImeResult *ime_key_ext(uint16_t key, bool caps, bool ctrl, bool shift);
void ime_free(ImeResult *r);
void ime_method(uint8_t method);
void ime_enabled(bool enabled);
void ime_skip_w_shortcut(bool skip);
void ime_esc_restore(bool enabled);
void ime_free_tone(bool enabled);
void ime_modern(bool modern);
void ime_instant_restore(bool enabled);
void ime_clear(void);
void ime_clear_all(void);
bool ime_add_shortcut(const char *trigger, const char *replacement);
void ime_remove_shortcut(const char *trigger);
void ime_clear_shortcuts(void);
void ime_set_shortcuts_enabled(bool enabled);
void ime_restore_word(const char *word);
*/
import "C"

import "unsafe"

const nativeAvailable = true

// native binds the process-wide engine exported by libgoxviet_core.
type native struct{}

func newNative() Engine { return native{} }

// take copies r into Go memory and releases it.
func take(r *C.ImeResult) *Result {
	if r == nil {
		return nil
	}
	defer C.ime_free(r)

	res := &Result{
		Action:    Action(r.action),
		Backspace: int(r.backspace),
	}
	if n := int(r.count); n > 0 && r.chars != nil {
		src := unsafe.Slice((*uint32)(unsafe.Pointer(r.chars)), n)
		res.Chars = make([]rune, n)
		for i, c := range src {
			res.Chars[i] = rune(c)
		}
	}
	return res
}

func (native) Init() { C.ime_init() }

func (native) ProcessKey(keyCode uint16, uppercase, ctrl bool) *Result {
	return take(C.ime_key(C.uint16_t(keyCode), C.bool(uppercase), C.bool(ctrl)))
}

func (native) ProcessKeyExt(keyCode uint16, uppercase, ctrl, shift bool) *Result {
	return take(C.ime_key_ext(C.uint16_t(keyCode), C.bool(uppercase), C.bool(ctrl), C.bool(shift)))
}

func (native) RestoreWord(word string) {
	cs := C.CString(word)
	defer C.free(unsafe.Pointer(cs))
	C.ime_restore_word(cs)
}

func (native) SetMethod(m Method)               { C.ime_method(C.uint8_t(m)) }
func (native) SetEnabled(enabled bool)          { C.ime_enabled(C.bool(enabled)) }
func (native) SetModernTone(modern bool)        { C.ime_modern(C.bool(modern)) }
func (native) SetEscRestore(enabled bool)       { C.ime_esc_restore(C.bool(enabled)) }
func (native) SetFreeTone(enabled bool)         { C.ime_free_tone(C.bool(enabled)) }
func (native) SetInstantRestore(enabled bool)   { C.ime_instant_restore(C.bool(enabled)) }
func (native) SetSkipWShortcut(skip bool)       { C.ime_skip_w_shortcut(C.bool(skip)) }
func (native) ClearComposition()                { C.ime_clear() }
func (native) ClearAllState()                   { C.ime_clear_all() }
func (native) ClearShortcuts()                  { C.ime_clear_shortcuts() }
func (native) SetShortcutsEnabled(enabled bool) { C.ime_set_shortcuts_enabled(C.bool(enabled)) }

func (native) AddShortcut(trigger, replacement string) bool {
	ct := C.CString(trigger)
	defer C.free(unsafe.Pointer(ct))
	cr := C.CString(replacement)
	defer C.free(unsafe.Pointer(cr))
	return bool(C.ime_add_shortcut(ct, cr))
}

func (native) RemoveShortcut(trigger string) {
	ct := C.CString(trigger)
	defer C.free(unsafe.Pointer(ct))
	C.ime_remove_shortcut(ct)
}
