package keyfill

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// FileLoader supplies template fragments and JSON documents to the
// resolver. A missing file is a LookupError and fails open at the keyword;
// any other I/O fault is a CollaboratorError and aborts the run.
type FileLoader interface {
	LoadText(path string) (string, error)
	LoadJSON(path string) (interface{}, error)
}

// OSFileLoader loads files from the local filesystem, optionally rooted at
// a base directory.
type OSFileLoader struct {
	Root string
}

func (l OSFileLoader) resolve(path string) string {
	if l.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Root, path)
}

func (l OSFileLoader) LoadText(path string) (string, error) {
	data, err := os.ReadFile(l.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewLookupError(path, "file not found")
		}
		return "", NewCollaboratorError("read", path, err)
	}
	return string(data), nil
}

func (l OSFileLoader) LoadJSON(path string) (interface{}, error) {
	data, err := os.ReadFile(l.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLookupError(path, "file not found")
		}
		return nil, NewCollaboratorError("read", path, err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, NewLookupError(path, "invalid JSON: "+err.Error())
	}
	return v, nil
}
