//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework Carbon -framework CoreFoundation

#include <Carbon/Carbon.h>
#include <stdlib.h>
#include <string.h>

// gxInputSourceLanguages writes the current keyboard input source's
// languages into buf as a comma separated list.
static void gxInputSourceLanguages(char *buf, int size) {
    buf[0] = 0;
    TISInputSourceRef src = TISCopyCurrentKeyboardInputSource();
    if (src == NULL) {
        return;
    }
    CFArrayRef langs = (CFArrayRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceLanguages);
    if (langs != NULL) {
        CFIndex n = CFArrayGetCount(langs);
        int used = 0;
        for (CFIndex i = 0; i < n; i++) {
            CFStringRef lang = (CFStringRef)CFArrayGetValueAtIndex(langs, i);
            char tmp[64];
            if (!CFStringGetCString(lang, tmp, sizeof(tmp), kCFStringEncodingUTF8)) {
                continue;
            }
            int l = (int)strlen(tmp);
            if (used + l + 2 >= size) {
                break;
            }
            if (used > 0) {
                buf[used++] = ',';
            }
            memcpy(buf + used, tmp, l);
            used += l;
            buf[used] = 0;
        }
    }
    CFRelease(src);
}
*/
import "C"

import (
	"strings"
	"unsafe"
)

type darwinInputSource struct{}

func (darwinInputSource) IsLatin() bool {
	buf := make([]byte, 512)
	C.gxInputSourceLanguages((*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf)))
	langs := C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
	if langs == "" {
		return true
	}
	return IsLatinLanguage(strings.Split(langs, ","))
}
