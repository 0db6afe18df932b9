//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework Foundation

#include <AppKit/AppKit.h>

extern void goxvietAppActivated(char *bundleID);

static id gxActivationObserver = nil;
static NSOperationQueue *gxActivationQueue = nil;

static void gxStartActivationObserver(void) {
    if (gxActivationObserver != nil) {
        return;
    }
    gxActivationQueue = [[NSOperationQueue alloc] init];
    gxActivationQueue.maxConcurrentOperationCount = 1;
    NSNotificationCenter *center = [[NSWorkspace sharedWorkspace] notificationCenter];
    gxActivationObserver = [center addObserverForName:NSWorkspaceDidActivateApplicationNotification
                                               object:nil
                                                queue:gxActivationQueue
                                           usingBlock:^(NSNotification *note) {
        @autoreleasepool {
            NSRunningApplication *app = note.userInfo[NSWorkspaceApplicationKey];
            const char *bundleID = app.bundleIdentifier ? [app.bundleIdentifier UTF8String] : "";
            goxvietAppActivated((char *)bundleID);
        }
    }];
}

static void gxStopActivationObserver(void) {
    if (gxActivationObserver == nil) {
        return;
    }
    [[[NSWorkspace sharedWorkspace] notificationCenter] removeObserver:gxActivationObserver];
    gxActivationObserver = nil;
    gxActivationQueue = nil;
}
*/
import "C"

import "sync"

var (
	workspaceMu       sync.RWMutex
	workspaceWatchers = map[int]func(string){}
	workspaceNextID   int
)

type darwinWorkspace struct{}

func (darwinWorkspace) Watch(fn func(appID string)) (func(), error) {
	workspaceMu.Lock()
	id := workspaceNextID
	workspaceNextID++
	workspaceWatchers[id] = fn
	first := len(workspaceWatchers) == 1
	workspaceMu.Unlock()

	if first {
		C.gxStartActivationObserver()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			workspaceMu.Lock()
			delete(workspaceWatchers, id)
			last := len(workspaceWatchers) == 0
			workspaceMu.Unlock()
			if last {
				C.gxStopActivationObserver()
			}
		})
	}, nil
}
