package build

import (
	"bytes"
	"context"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/mod/modfile"

	"github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/pkg/router"
)

// GeneratedFile is the registry file written into the app directory.
const GeneratedFile = "zz_components_gen.go"

// RegistryVar is the exported registry variable in the generated file.
const RegistryVar = "Components"

// LoaderImport is the import path of the loader package.
const LoaderImport = "github.com/kyori-mfv/mfext/pkg/loader"

// funcNames maps special file kinds to the function each file exports.
var funcNames = map[string]string{
	router.KindPage:     "Page",
	router.KindLayout:   "Layout",
	router.KindLoading:  "Loading",
	router.KindError:    "Error",
	router.KindNotFound: "NotFound",
}

// Registration is one generated Register call.
type Registration struct {
	// ID is the component identifier.
	ID string

	// Expr is the registered expression, e.g. "r_dashboard.Layout", or
	// "nil" when the file lacks the expected function.
	Expr string

	// Missing names the function that was expected but not found.
	Missing string
}

// Import is an aliased import of an app subpackage.
type Import struct {
	Alias string
	Path  string
}

// Registry is the input of the generated file template.
type Registry struct {
	Package       string
	LoaderImport  string
	Var           string
	Imports       []Import
	Registrations []Registration
}

var registryTemplate = template.Must(template.New(GeneratedFile).Parse(`// Code generated by mfext build; DO NOT EDIT.

package {{.Package}}

import (
	"{{.LoaderImport}}"
{{range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

// {{.Var}} registers every page, layout and boundary component of the app.
var {{.Var}} = loader.NewRegistry()

func init() {
{{- range .Registrations}}
	{{$.Var}}.Register("{{.ID}}", {{.Expr}}){{if .Missing}} // no {{.Missing}} func{{end}}
{{- end}}
}
`))

// generate writes the component registry for the routes manifest.
func (b *Builder) generate(ctx context.Context, result *Result) error {
	m, err := b.readManifest()
	if err != nil {
		return err
	}
	reg, err := BuildRegistry(b.config.Root(), b.config.AppPath(), m)
	if err != nil {
		return err
	}
	src, err := reg.Render()
	if err != nil {
		return err
	}

	out := filepath.Join(b.config.AppPath(), GeneratedFile)
	if old, err := os.ReadFile(out); err == nil && bytes.Equal(old, src) {
		slogctx.FromCtx(ctx).Debug("component registry unchanged", "path", out)
	} else if err := os.WriteFile(out, src, 0o644); err != nil {
		return errors.New("E160").Wrap(err)
	}

	for _, r := range reg.Registrations {
		if r.Missing != "" {
			slogctx.FromCtx(ctx).Warn("component file has no "+r.Missing+" function, it will render a fallback", "id", r.ID)
		}
	}
	result.Components = len(reg.Registrations)
	slogctx.FromCtx(ctx).Info("component registry written", "path", out, "components", len(reg.Registrations))
	return nil
}

// BuildRegistry collects every component identifier in m and works out the
// import path and function for each. root must hold go.mod.
func BuildRegistry(root, appDir string, m *router.Manifest) (*Registry, error) {
	modPath, err := ModulePath(root)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, appDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, errors.New("E160").WithDetail("App directory " + appDir + " is outside the module at " + root)
	}
	appImport := path.Join(modPath, filepath.ToSlash(rel))

	pkg, err := packageName(appDir)
	if err != nil {
		return nil, err
	}

	reg := &Registry{Package: pkg, LoaderImport: LoaderImport, Var: RegistryVar}
	aliases := map[string]string{} // dir -> alias
	taken := map[string]bool{}
	fset := token.NewFileSet()

	for _, c := range manifestComponents(m.Tree) {
		fn := funcNames[c.kind]
		r := Registration{ID: c.id, Expr: "nil"}

		ok, err := declaresFunc(fset, filepath.Join(appDir, filepath.FromSlash(c.id)), fn)
		if err != nil {
			return nil, errors.New("E160").WithDetail("Parsing " + c.id).WithLocationFromError(err).Wrap(err)
		}
		switch {
		case !ok:
			r.Missing = fn
		case path.Dir(c.id) == ".":
			r.Expr = fn
		default:
			dir := path.Dir(c.id)
			alias, seen := aliases[dir]
			if !seen {
				alias = importAlias(dir, taken)
				aliases[dir] = alias
				taken[alias] = true
				reg.Imports = append(reg.Imports, Import{Alias: alias, Path: path.Join(appImport, dir)})
			}
			r.Expr = alias + "." + fn
		}
		reg.Registrations = append(reg.Registrations, r)
	}

	sort.Slice(reg.Imports, func(i, j int) bool { return reg.Imports[i].Path < reg.Imports[j].Path })
	return reg, nil
}

// Render executes the template and gofmts the result.
func (r *Registry) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := registryTemplate.Execute(&buf, r); err != nil {
		return nil, errors.New("E160").Wrap(err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.New("E160").WithDetail(buf.String()).Wrap(err)
	}
	return src, nil
}

// ModulePath reads the module path from root/go.mod.
func ModulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", errors.New("E140").Wrap(err)
	}
	p := modfile.ModulePath(data)
	if p == "" {
		return "", errors.New("E160").WithDetail("go.mod in " + root + " has no module directive")
	}
	return p, nil
}

type component struct {
	id   string
	kind string
}

// manifestComponents lists every identifier in the tree sorted by id.
func manifestComponents(root *router.Segment) []component {
	var out []component
	var walk func(seg *router.Segment)
	walk = func(seg *router.Segment) {
		if seg == nil {
			return
		}
		for kind, id := range map[string]string{
			router.KindPage:     seg.Page,
			router.KindLayout:   seg.Layout,
			router.KindLoading:  seg.Loading,
			router.KindError:    seg.Error,
			router.KindNotFound: seg.NotFound,
		} {
			if id != "" {
				out = append(out, component{id: id, kind: kind})
			}
		}
		for _, child := range seg.Children {
			walk(child)
		}
	}
	walk(root)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// declaresFunc reports whether file declares a top-level function name.
func declaresFunc(fset *token.FileSet, file, name string) (bool, error) {
	f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil && fn.Name.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// packageName returns the package clause of the Go files in dir, or a name
// derived from the directory when it holds none.
func packageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.New("E103").Wrap(err)
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == GeneratedFile {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			continue
		}
		return f.Name.Name, nil
	}
	return sanitize(filepath.Base(dir)), nil
}

// importAlias derives an alias for an app subdirectory. Directories that
// sanitize to the same name (a/b, a_b, a-b) get a numeric suffix.
func importAlias(dir string, taken map[string]bool) string {
	base := "r_" + sanitize(dir)
	alias := base
	for n := 2; taken[alias]; n++ {
		alias = base + "_" + strconv.Itoa(n)
	}
	return alias
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}
