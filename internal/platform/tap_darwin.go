//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation

#include <ApplicationServices/ApplicationServices.h>
#include <pthread.h>
#include <unistd.h>

// Implemented in Go (exports_darwin.go).
extern int goxvietTapEvent(int kind, uint16_t keycode, uint64_t flags, int64_t userData);

// Implemented in ax_darwin.go.
extern int gxCheckAccessibility(void);

static CFMachPortRef gxTap = NULL;
static CFRunLoopSourceRef gxTapSource = NULL;
static CFRunLoopRef gxTapRunLoop = NULL;
static volatile int gxTapEnabled = 0;
static volatile int gxTapDisabledBySystem = 0;
static pthread_t gxTapThread;
static volatile int gxTapThreadRunning = 0;

static void gxStopTap(void);

static CGEventRef gxTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    (void)proxy;
    (void)refcon;

    // The system disables slow taps; turn it straight back on.
    if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
        gxTapDisabledBySystem = 1;
        if (gxTap != NULL) {
            CGEventTapEnable(gxTap, true);
        }
        return event;
    }

    int kind;
    switch (type) {
    case kCGEventKeyDown:
        kind = 1;
        break;
    case kCGEventKeyUp:
        kind = 2;
        break;
    case kCGEventFlagsChanged:
        kind = 3;
        break;
    case kCGEventLeftMouseDown:
    case kCGEventRightMouseDown:
    case kCGEventOtherMouseDown:
        kind = 4;
        break;
    default:
        return event;
    }

    uint16_t code = (uint16_t)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
    int64_t userData = CGEventGetIntegerValueField(event, kCGEventSourceUserData);
    uint64_t flags = (uint64_t)CGEventGetFlags(event);

    if (goxvietTapEvent(kind, code, flags, userData) == 1) {
        return NULL;
    }
    return event;
}

static void* gxTapThreadMain(void* arg) {
    (void)arg;
    gxTapRunLoop = CFRunLoopGetCurrent();
    CFRunLoopAddSource(gxTapRunLoop, gxTapSource, kCFRunLoopCommonModes);
    CGEventTapEnable(gxTap, true);
    gxTapEnabled = 1;

    CFRunLoopRun();

    gxTapEnabled = 0;
    gxTapRunLoop = NULL;
    return NULL;
}

static int gxStartTap(void) {
    if (gxTap != NULL) {
        return 1;
    }

    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) |
                       CGEventMaskBit(kCGEventKeyUp) |
                       CGEventMaskBit(kCGEventFlagsChanged) |
                       CGEventMaskBit(kCGEventLeftMouseDown) |
                       CGEventMaskBit(kCGEventRightMouseDown) |
                       CGEventMaskBit(kCGEventOtherMouseDown);

    gxTap = CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap,
                             kCGEventTapOptionDefault, mask, gxTapCallback, NULL);
    if (gxTap == NULL) {
        return -1;
    }

    gxTapSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, gxTap, 0);
    if (gxTapSource == NULL) {
        CFRelease(gxTap);
        gxTap = NULL;
        return -2;
    }

    gxTapThreadRunning = 1;
    if (pthread_create(&gxTapThread, NULL, gxTapThreadMain, NULL) != 0) {
        CFRelease(gxTapSource);
        CFRelease(gxTap);
        gxTapSource = NULL;
        gxTap = NULL;
        gxTapThreadRunning = 0;
        return -3;
    }

    for (int i = 0; i < 100 && !gxTapEnabled; i++) {
        usleep(10000);
    }
    if (!gxTapEnabled) {
        gxStopTap();
        return -4;
    }
    return 0;
}

static void gxStopTap(void) {
    if (gxTap == NULL) {
        return;
    }
    CGEventTapEnable(gxTap, false);
    gxTapEnabled = 0;

    if (gxTapRunLoop != NULL) {
        CFRunLoopStop(gxTapRunLoop);
    }
    if (gxTapThreadRunning) {
        pthread_join(gxTapThread, NULL);
        gxTapThreadRunning = 0;
    }
    if (gxTapSource != NULL) {
        CFRelease(gxTapSource);
        gxTapSource = NULL;
    }
    if (gxTap != NULL) {
        CFRelease(gxTap);
        gxTap = NULL;
    }
    gxTapRunLoop = NULL;
}

static int gxTapIsEnabled(void) {
    return gxTapEnabled;
}

static int gxTapWasDisabledBySystem(void) {
    int v = gxTapDisabledBySystem;
    gxTapDisabledBySystem = 0;
    return v;
}
*/
import "C"

import (
	"errors"
	"sync"
	"sync/atomic"
)

type sinkBox struct{ sink Sink }

// currentSink is read by the exported callback on the tap thread.
var currentSink atomic.Pointer[sinkBox]

// darwinTap is the process-wide CGEventTap. Only one can exist.
type darwinTap struct {
	mu      sync.Mutex
	running bool
}

var sharedTap = &darwinTap{}

func (t *darwinTap) Start(sink Sink) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}
	if C.gxCheckAccessibility() != 1 {
		return ErrPermissionDenied
	}

	currentSink.Store(&sinkBox{sink: sink})
	switch C.gxStartTap() {
	case 0:
	case 1:
		return ErrAlreadyRunning
	case -1:
		currentSink.Store(nil)
		return ErrPermissionDenied
	case -2:
		currentSink.Store(nil)
		return errors.New("failed to create run loop source")
	case -3:
		currentSink.Store(nil)
		return errors.New("failed to create run loop thread")
	default:
		currentSink.Store(nil)
		return errors.New("timeout waiting for event tap to start")
	}
	t.running = true
	return nil
}

func (t *darwinTap) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	C.gxStopTap()
	currentSink.Store(nil)
	t.running = false
	return nil
}

func (t *darwinTap) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && C.gxTapIsEnabled() == 1
}

// DisabledBySystem reports, and resets, whether the system disabled the
// tap since the last call. The tap is re-enabled automatically.
func DisabledBySystem() bool {
	return C.gxTapWasDisabledBySystem() == 1
}
