//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation -framework AppKit

#include <ApplicationServices/ApplicationServices.h>
#include <AppKit/AppKit.h>
#include <stdlib.h>
#include <string.h>

int gxCheckAccessibility(void) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

static int gxPromptAccessibility(void) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

static char* gxCopyCString(CFStringRef s) {
    if (s == NULL) {
        return NULL;
    }
    CFIndex len = CFStringGetLength(s);
    CFIndex max = CFStringGetMaximumSizeForEncoding(len, kCFStringEncodingUTF8) + 1;
    char *buf = malloc(max);
    if (buf == NULL) {
        return NULL;
    }
    if (!CFStringGetCString(s, buf, max, kCFStringEncodingUTF8)) {
        free(buf);
        return NULL;
    }
    return buf;
}

static char* gxBundleIDForPID(pid_t pid) {
    @autoreleasepool {
        NSRunningApplication *app = [NSRunningApplication runningApplicationWithProcessIdentifier:pid];
        if (app == nil || app.bundleIdentifier == nil) {
            return NULL;
        }
        return strdup([app.bundleIdentifier UTF8String]);
    }
}

static char* gxFrontmostBundleID(void) {
    @autoreleasepool {
        NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
        if (app == nil || app.bundleIdentifier == nil) {
            return NULL;
        }
        return strdup([app.bundleIdentifier UTF8String]);
    }
}

static int gxFocusedElement(AXUIElementRef *out) {
    AXUIElementRef sys = AXUIElementCreateSystemWide();
    if (sys == NULL) {
        return kAXErrorFailure;
    }
    CFTypeRef el = NULL;
    AXError err = AXUIElementCopyAttributeValue(sys, kAXFocusedUIElementAttribute, &el);
    CFRelease(sys);
    if (err != kAXErrorSuccess) {
        return err;
    }
    if (el == NULL) {
        return kAXErrorNoValue;
    }
    *out = (AXUIElementRef)el;
    return kAXErrorSuccess;
}

static int gxStringAttr(AXUIElementRef el, const char *name, char **out) {
    CFStringRef attr = CFStringCreateWithCString(NULL, name, kCFStringEncodingUTF8);
    CFTypeRef value = NULL;
    AXError err = AXUIElementCopyAttributeValue(el, attr, &value);
    CFRelease(attr);
    if (err != kAXErrorSuccess) {
        return err;
    }
    if (value == NULL || CFGetTypeID(value) != CFStringGetTypeID()) {
        if (value != NULL) {
            CFRelease(value);
        }
        return kAXErrorNoValue;
    }
    *out = gxCopyCString((CFStringRef)value);
    CFRelease(value);
    return *out == NULL ? kAXErrorFailure : kAXErrorSuccess;
}

static int gxElementPID(AXUIElementRef el, pid_t *pid) {
    return AXUIElementGetPid(el, pid);
}

static int gxSelectedRange(AXUIElementRef el, long *loc, long *len) {
    CFTypeRef value = NULL;
    AXError err = AXUIElementCopyAttributeValue(el, kAXSelectedTextRangeAttribute, &value);
    if (err != kAXErrorSuccess) {
        return err;
    }
    CFRange r;
    int ok = value != NULL && AXValueGetValue((AXValueRef)value, kAXValueCFRangeType, &r);
    if (value != NULL) {
        CFRelease(value);
    }
    if (!ok) {
        return kAXErrorFailure;
    }
    *loc = r.location;
    *len = r.length;
    return kAXErrorSuccess;
}

static int gxSetValue(AXUIElementRef el, const char *utf8) {
    CFStringRef s = CFStringCreateWithCString(NULL, utf8, kCFStringEncodingUTF8);
    if (s == NULL) {
        return kAXErrorFailure;
    }
    AXError err = AXUIElementSetAttributeValue(el, kAXValueAttribute, s);
    CFRelease(s);
    return err;
}

static int gxSetSelectedRange(AXUIElementRef el, long loc, long len) {
    CFRange r = CFRangeMake(loc, len);
    AXValueRef value = AXValueCreate(kAXValueCFRangeType, &r);
    if (value == NULL) {
        return kAXErrorFailure;
    }
    AXError err = AXUIElementSetAttributeValue(el, kAXSelectedTextRangeAttribute, value);
    CFRelease(value);
    return err;
}

static void gxRelease(AXUIElementRef el) {
    if (el != NULL) {
        CFRelease(el);
    }
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// axError wraps a non-success AXError code.
func axError(op string, code C.int) error {
	if code == C.kAXErrorNoValue || code == C.kAXErrorAttributeUnsupported {
		return fmt.Errorf("%s: %w (ax %d)", op, ErrNoFocus, int(code))
	}
	return fmt.Errorf("%s: %w (ax %d)", op, ErrAccessibility, int(code))
}

type darwinPermission struct{}

func (darwinPermission) Trusted() bool { return C.gxCheckAccessibility() == 1 }
func (darwinPermission) Prompt() bool  { return C.gxPromptAccessibility() == 1 }

type darwinAX struct{}

func (darwinAX) FocusedElement() (Element, error) {
	var ref C.AXUIElementRef
	if code := C.gxFocusedElement(&ref); code != C.kAXErrorSuccess {
		return nil, axError("focused element", code)
	}
	return &axElement{ref: ref}, nil
}

func (darwinAX) FrontmostAppID() (string, error) {
	cs := C.gxFrontmostBundleID()
	if cs == nil {
		return "", fmt.Errorf("frontmost app: %w", ErrNoFocus)
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs), nil
}

type axElement struct {
	ref C.AXUIElementRef
}

func (e *axElement) stringAttr(name string) (string, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var out *C.char
	if code := C.gxStringAttr(e.ref, cname, &out); code != C.kAXErrorSuccess {
		return "", axError(name, code)
	}
	defer C.free(unsafe.Pointer(out))
	return C.GoString(out), nil
}

func (e *axElement) Role() (string, error) {
	return e.stringAttr("AXRole")
}

func (e *axElement) AppID() (string, error) {
	var pid C.pid_t
	if code := C.gxElementPID(e.ref, &pid); code != C.kAXErrorSuccess {
		return "", axError("pid", code)
	}
	cs := C.gxBundleIDForPID(pid)
	if cs == nil {
		return "", fmt.Errorf("bundle id for pid %d: %w", int(pid), ErrNoFocus)
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs), nil
}

func (e *axElement) Value() (string, error) {
	return e.stringAttr("AXValue")
}

func (e *axElement) SelectedRange() (Range, error) {
	var loc, length C.long
	if code := C.gxSelectedRange(e.ref, &loc, &length); code != C.kAXErrorSuccess {
		return Range{}, axError("selected range", code)
	}
	return Range{Location: int(loc), Length: int(length)}, nil
}

func (e *axElement) SetValue(v string) error {
	cs := C.CString(v)
	defer C.free(unsafe.Pointer(cs))
	if code := C.gxSetValue(e.ref, cs); code != C.kAXErrorSuccess {
		return axError("set value", code)
	}
	return nil
}

func (e *axElement) SetSelectedRange(r Range) error {
	if code := C.gxSetSelectedRange(e.ref, C.long(r.Location), C.long(r.Length)); code != C.kAXErrorSuccess {
		return axError("set selected range", code)
	}
	return nil
}

func (e *axElement) Release() {
	if e.ref != 0 {
		C.gxRelease(e.ref)
		e.ref = 0
	}
}
