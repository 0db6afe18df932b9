package expansion

import (
	"fmt"

	"goxviet/internal/engine"
)

// Loader is anything that can list the dictionary.
type Loader interface {
	List() ([]Entry, error)
}

// Sync replaces the engine dictionary with the entries of src active under
// method m and returns how many the engine accepted.
func Sync(src Loader, client *engine.Client, m engine.Method) (int, error) {
	entries, err := src.List()
	if err != nil {
		return 0, fmt.Errorf("load dictionary: %w", err)
	}
	return client.ReplaceShortcuts(ForMethod(entries, m)), nil
}

// Static is a fixed in-memory dictionary.
type Static []Entry

// List returns the entries.
func (s Static) List() ([]Entry, error) {
	return []Entry(s), nil
}
