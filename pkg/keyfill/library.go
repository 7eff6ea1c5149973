package keyfill

import "sync"

// Library is a registry of named, versioned template fragments, resolved
// by {{TEMPLATE!LIBRARY!name!version}} keywords instead of file paths.
type Library struct {
	mu      sync.RWMutex
	entries map[string][]libraryEntry
}

type libraryEntry struct {
	version string
	content string
}

// NewLibrary creates an empty fragment library
func NewLibrary() *Library {
	return &Library{entries: make(map[string][]libraryEntry)}
}

// Register adds a fragment under name and version. Re-registering a
// version replaces its content; the most recently registered version is
// the latest.
func (l *Library) Register(name, version, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[name]
	for i, e := range entries {
		if e.version == version {
			entries[i].content = content
			// Move to the end so it counts as latest again.
			entry := entries[i]
			entries = append(append(entries[:i], entries[i+1:]...), entry)
			l.entries[name] = entries
			return
		}
	}
	l.entries[name] = append(entries, libraryEntry{version: version, content: content})
}

// Resolve returns the fragment registered under name and version. An
// empty version means the latest registered one.
func (l *Library) Resolve(name, version string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.entries[name]
	if len(entries) == 0 {
		return "", NewLookupError(name, "library template not found")
	}
	if version == "" {
		return entries[len(entries)-1].content, nil
	}
	for _, e := range entries {
		if e.version == version {
			return e.content, nil
		}
	}
	return "", NewLookupError(name, "library template version '"+version+"' not found")
}

// Names returns the registered fragment names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	return names
}
