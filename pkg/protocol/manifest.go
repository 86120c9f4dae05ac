package protocol

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"gitlab.com/tozd/go/errors"
)

// ContentType is the media type of a component stream response.
const ContentType = "text/x-component"

// ClientModule describes one client module and the chunks the browser loads
// for it.
type ClientModule struct {
	ID     string   `json:"id"`
	Chunks []string `json:"chunks"`
	Name   string   `json:"name"`
}

// ClientManifest maps client references to their modules.
type ClientManifest map[string]ClientModule

// LoadClientManifest reads a client manifest file. The returned manifest is
// never nil: on error it is empty and the caller decides whether to log.
func LoadClientManifest(path string) (ClientManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientManifest{}, errors.WithStack(err)
	}
	m := ClientManifest{}
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientManifest{}, errors.Errorf("parse client manifest %s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes the manifest as indented JSON, creating the directory.
func (m ClientManifest) WriteFile(path string) error {
	if m == nil {
		m = ClientManifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, append(data, '\n'), 0o644))
}

// Resolve returns the module for ref. Unknown references resolve to a module
// with no chunks so the stream stays well formed.
func (m ClientManifest) Resolve(ref string) ClientModule {
	if mod, ok := m[ref]; ok {
		if mod.ID == "" {
			mod.ID = ref
		}
		return mod
	}
	return ClientModule{ID: ref, Name: "default"}
}

// Refs returns the manifest keys in sorted order.
func (m ClientManifest) Refs() []string {
	refs := make([]string, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
