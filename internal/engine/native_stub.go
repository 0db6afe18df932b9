//go:build !goxviet_core

package engine

const nativeAvailable = false

func newNative() Engine { return Unavailable{} }
