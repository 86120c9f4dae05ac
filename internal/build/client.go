package build

import (
	"context"
	_ "embed"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/pkg/protocol"
)

// Static output file names.
const (
	ClientScript = "client.js"
	ClientWasm   = "client.wasm"
	WasmExec     = "wasm_exec.js"
)

// ClientSuffix marks files holding client components.
const ClientSuffix = "_client.go"

//go:embed assets/client.js
var clientScript []byte

// client fills the static output directory and writes the client manifest.
func (b *Builder) client(ctx context.Context, result *Result) error {
	logger := slogctx.FromCtx(ctx)
	publicOut := b.config.StaticOutputPath()

	if err := os.MkdirAll(publicOut, 0o755); err != nil {
		return errors.New("E161").Wrap(err)
	}
	if err := copyDir(b.config.PublicPath(), publicOut); err != nil {
		return errors.New("E161").WithDetail("Copying " + b.config.PublicPath()).Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(publicOut, ClientScript), clientScript, 0o644); err != nil {
		return errors.New("E161").Wrap(err)
	}

	wasm := false
	if main := b.config.Paths.ClientMain; main != "" && dirExists(b.resolve(main)) {
		if err := b.buildWasm(ctx, publicOut); err != nil {
			return err
		}
		wasm = true
	} else {
		logger.Debug("no client main, skipping WebAssembly build", "package", main)
	}

	manifest, err := ScanClientModules(b.config.AppPath(), wasm)
	if err != nil {
		return errors.New("E161").WithDetail("Scanning client components").Wrap(err)
	}
	if err := manifest.WriteFile(b.config.ClientManifestPath()); err != nil {
		return errors.New("E161").Wrap(err)
	}

	size, err := dirSize(publicOut)
	if err != nil {
		return errors.New("E161").Wrap(err)
	}
	result.ClientRefs = len(manifest)
	result.Public = publicOut
	result.PublicBytes = size
	logger.Info("client built", "public", publicOut, "refs", len(manifest), "wasm", wasm)
	return nil
}

// buildWasm compiles the client main and copies the Go wasm support script.
func (b *Builder) buildWasm(ctx context.Context, publicOut string) error {
	if err := checkGo(); err != nil {
		return err
	}
	res := NewCompiler(CompilerConfig{
		ProjectPath: b.config.Root(),
		Package:     b.config.Paths.ClientMain,
		BinaryPath:  filepath.Join(publicOut, ClientWasm),
		LDFlags:     "-s -w",
		Env:         []string{"GOOS=js", "GOARCH=wasm"},
	}).Build(ctx)
	if res.Error != nil {
		return res.Error
	}

	src, err := wasmExecPath(ctx)
	if err != nil {
		return errors.New("E161").WithDetail("Locating " + WasmExec).Wrap(err)
	}
	if err := copyFile(src, filepath.Join(publicOut, WasmExec)); err != nil {
		return errors.New("E161").Wrap(err)
	}
	return nil
}

// wasmExecPath finds wasm_exec.js in the Go installation. Go 1.24 moved it
// from misc/wasm to lib/wasm.
func wasmExecPath(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(out))
	for _, dir := range []string{"lib/wasm", "misc/wasm"} {
		p := filepath.Join(root, dir, WasmExec)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("E161").WithDetail(WasmExec + " not found under " + root)
}

// ScanClientModules builds the client manifest from the *_client.go files in
// appDir. A file dashboard/chart_client.go becomes the reference
// "dashboard/chart" named after its first exported function. When wasm is
// true every module loads the client.wasm chunk.
func ScanClientModules(appDir string, wasm bool) (protocol.ClientManifest, error) {
	manifest := protocol.ClientManifest{}
	if !dirExists(appDir) {
		return manifest, nil
	}

	fset := token.NewFileSet()
	err := filepath.WalkDir(appDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != appDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(name, ClientSuffix) {
			return nil
		}

		rel, err := filepath.Rel(appDir, p)
		if err != nil {
			return err
		}
		ref := strings.TrimSuffix(filepath.ToSlash(rel), ClientSuffix)

		file, err := parser.ParseFile(fset, p, nil, parser.SkipObjectResolution)
		if err != nil {
			return err
		}
		mod := protocol.ClientModule{ID: ref, Chunks: []string{}, Name: exportedFunc(file)}
		if wasm {
			mod.Chunks = []string{ClientWasm}
		}
		manifest[ref] = mod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func exportedFunc(file *ast.File) string {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Recv == nil && fn.Name.IsExported() {
			return fn.Name.Name
		}
	}
	return "default"
}

// copyDir copies src into dst. A missing src copies nothing.
func copyDir(src, dst string) error {
	if !dirExists(src) {
		return nil
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

// copyFile copies a file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// resolve makes a project-relative path absolute.
func (b *Builder) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.config.Root(), filepath.FromSlash(path.Clean(p)))
}
