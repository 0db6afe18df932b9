//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>

static CGEventSourceRef gxPostSource = NULL;

static CGEventSourceRef gxSource(void) {
    if (gxPostSource == NULL) {
        gxPostSource = CGEventSourceCreate(kCGEventSourceStatePrivate);
    }
    return gxPostSource;
}

static int gxPostKey(uint16_t code, int down, uint64_t flags, int64_t marker) {
    CGEventRef ev = CGEventCreateKeyboardEvent(gxSource(), (CGKeyCode)code, down ? true : false);
    if (ev == NULL) {
        return -1;
    }
    CGEventSetFlags(ev, (CGEventFlags)flags);
    CGEventSetIntegerValueField(ev, kCGEventSourceUserData, marker);
    CGEventPost(kCGSessionEventTap, ev);
    CFRelease(ev);
    return 0;
}

static int gxPostText(const UniChar *chars, int n, int down, int64_t marker) {
    CGEventRef ev = CGEventCreateKeyboardEvent(gxSource(), 0, down ? true : false);
    if (ev == NULL) {
        return -1;
    }
    CGEventSetFlags(ev, 0);
    CGEventKeyboardSetUnicodeString(ev, (UniCharCount)n, chars);
    CGEventSetIntegerValueField(ev, kCGEventSourceUserData, marker);
    CGEventPost(kCGSessionEventTap, ev);
    CFRelease(ev);
    return 0;
}

static int gxShiftDown(void) {
    CGEventFlags flags = CGEventSourceFlagsState(kCGEventSourceStateHIDSystemState);
    return (flags & kCGEventFlagMaskShift) != 0;
}
*/
import "C"

import (
	"errors"
	"unicode/utf16"
	"unsafe"

	"goxviet/internal/synth"
)

var errPost = errors.New("CGEventCreateKeyboardEvent failed")

// darwinPoster posts keyboard events at the session tap. It posts the
// event's marker as given: wrap it in synth.MarkingPoster.
type darwinPoster struct{}

func (darwinPoster) Post(ev synth.Event) error {
	down := C.int(0)
	if ev.Down {
		down = 1
	}
	if ev.IsText() {
		units := utf16.Encode(ev.Text)
		if C.gxPostText((*C.UniChar)(unsafe.Pointer(&units[0])), C.int(len(units)), down, C.int64_t(ev.Marker)) != 0 {
			return errPost
		}
		return nil
	}
	flags := C.uint64_t(FlagsFromModifiers(ev.Modifiers))
	if C.gxPostKey(C.uint16_t(ev.KeyCode), down, flags, C.int64_t(ev.Marker)) != 0 {
		return errPost
	}
	return nil
}

type darwinKeyState struct{}

func (darwinKeyState) ShiftDown() bool { return C.gxShiftDown() == 1 }
