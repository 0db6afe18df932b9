package engine

// Unavailable stands in when the native core library is not linked.
// Every processing call returns nil, so the pipeline passes keys through.
type Unavailable struct{}

var _ Engine = Unavailable{}

func (Unavailable) Init()                                          {}
func (Unavailable) ProcessKey(uint16, bool, bool) *Result          { return nil }
func (Unavailable) ProcessKeyExt(uint16, bool, bool, bool) *Result { return nil }
func (Unavailable) RestoreWord(string)                             {}
func (Unavailable) SetMethod(Method)                               {}
func (Unavailable) SetEnabled(bool)                                {}
func (Unavailable) SetModernTone(bool)                             {}
func (Unavailable) SetEscRestore(bool)                             {}
func (Unavailable) SetFreeTone(bool)                               {}
func (Unavailable) SetInstantRestore(bool)                         {}
func (Unavailable) SetSkipWShortcut(bool)                          {}
func (Unavailable) ClearComposition()                              {}
func (Unavailable) ClearAllState()                                 {}
func (Unavailable) AddShortcut(string, string) bool                { return false }
func (Unavailable) RemoveShortcut(string)                          {}
func (Unavailable) ClearShortcuts()                                {}
func (Unavailable) SetShortcutsEnabled(bool)                       {}

// Native returns the linked core engine, or Unavailable when the binary
// was built without the goxviet_core tag.
func Native() Engine {
	return newNative()
}

// NativeAvailable reports whether the core library is linked in.
func NativeAvailable() bool {
	return nativeAvailable
}
