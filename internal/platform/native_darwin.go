//go:build darwin

package platform

func native() Services {
	return Services{
		Tap:         sharedTap,
		Poster:      darwinPoster{},
		AX:          darwinAX{},
		Permission:  darwinPermission{},
		InputSource: darwinInputSource{},
		KeyState:    darwinKeyState{},
		Workspace:   darwinWorkspace{},
	}
}
