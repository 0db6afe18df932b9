//go:build darwin

package platform

/*
#include <stdint.h>
*/
import "C"

import (
	"goxviet/internal/keyevent"
	"goxviet/internal/synth"
)

//export goxvietTapEvent
func goxvietTapEvent(kind C.int, keycode C.uint16_t, flags C.uint64_t, userData C.int64_t) C.int {
	box := currentSink.Load()
	if box == nil {
		return 0
	}
	ev := keyevent.KeyEvent{
		Kind:      keyevent.Kind(kind),
		KeyCode:   uint16(keycode),
		Modifiers: ModifiersFromFlags(uint64(flags)),
		Synthetic: synth.IsOwn(int64(userData)),
	}
	if box.sink.HandleEvent(ev) == Swallow {
		return 1
	}
	return 0
}

//export goxvietAppActivated
func goxvietAppActivated(bundleID *C.char) {
	id := C.GoString(bundleID)
	workspaceMu.RLock()
	watchers := make([]func(string), 0, len(workspaceWatchers))
	for _, fn := range workspaceWatchers {
		watchers = append(watchers, fn)
	}
	workspaceMu.RUnlock()
	for _, fn := range watchers {
		fn(id)
	}
}
