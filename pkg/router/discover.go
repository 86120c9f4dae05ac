package router

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

// Discover scans rootDir and builds a route manifest.
//
// Discovery never fails on filesystem problems: a missing root or a scan
// error is logged and yields EmptyManifest. The error result only reports
// context cancellation.
func Discover(ctx context.Context, rootDir string) (*Manifest, error) {
	logger := slogctx.FromCtx(ctx).With("component", "router")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanner := NewScanner(rootDir)
	if !scanner.Exists() {
		logger.Warn("app directory not found, no routes discovered", "dir", rootDir)
		return EmptyManifest(), nil
	}

	files, err := scanner.Scan()
	if err != nil {
		logger.Warn("route discovery failed", "dir", rootDir, "error", err)
		return EmptyManifest(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := buildTree(files, logger)
	m := &Manifest{Routes: flatten(tree), Tree: tree}
	logger.Debug("routes discovered", "dir", rootDir, "routes", len(m.Routes))
	return m, nil
}

// DiscoverAndWrite runs Discover and writes the manifest to outputPath. The
// file is only rewritten when its content changed. The returned bool reports
// whether a write happened.
func DiscoverAndWrite(ctx context.Context, rootDir, outputPath string) (*Manifest, bool, error) {
	m, err := Discover(ctx, rootDir)
	if err != nil {
		return nil, false, err
	}
	changed, err := m.WriteFile(outputPath)
	if err != nil {
		slogctx.FromCtx(ctx).Warn("writing route manifest failed", "component", "router", "path", outputPath, "error", err)
		return EmptyManifest(), false, nil
	}
	return m, changed, nil
}

// Marshal returns the canonical JSON form of the manifest.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the manifest to path, creating the directory. It skips the
// write when the file already holds identical bytes.
func (m *Manifest) WriteFile(path string) (bool, error) {
	data, err := m.Marshal()
	if err != nil {
		return false, err
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

// ReadManifest reads a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Errorf("parse route manifest %s: %w", path, err)
	}
	if m.Tree == nil {
		m.Tree = newSegment("/")
	}
	if m.Routes == nil {
		m.Routes = map[string]*ResolvedRoute{}
	}
	fixChildren(m.Tree)
	return m, nil
}

func fixChildren(seg *Segment) {
	if seg.Children == nil {
		seg.Children = map[string]*Segment{}
	}
	for key, c := range seg.Children {
		if c == nil {
			delete(seg.Children, key)
			continue
		}
		fixChildren(c)
	}
}
