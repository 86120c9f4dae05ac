package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/kyori-mfv/mfext/internal/errors"
)

// FrameworkPath is the module path generated projects depend on.
const FrameworkPath = "github.com/kyori-mfv/mfext"

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string

	// Description is a short project description.
	Description string

	// FrameworkPath defaults to FrameworkPath.
	FrameworkPath string

	// FrameworkVersion is required in go.mod. Default: v0.1.0.
	FrameworkVersion string

	// GoVersion is the go directive. Default: 1.23.
	GoVersion string
}

func (c *Config) applyDefaults() {
	if c.ModulePath == "" {
		c.ModulePath = c.ProjectName
	}
	if c.Description == "" {
		c.Description = "An mfext application"
	}
	if c.FrameworkPath == "" {
		c.FrameworkPath = FrameworkPath
	}
	if c.FrameworkVersion == "" {
		c.FrameworkVersion = "v0.1.0"
	}
	if c.GoVersion == "" {
		c.GoVersion = "1.23"
	}
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"full":    fullTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E148").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, full")
	}
	return tmpl, nil
}

// List returns all available template names in sorted order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the template's file paths in sorted order.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template in dir.
func (t *Template) Create(dir string, cfg Config) error {
	cfg.applyDefaults()

	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Delims("[[", "]]").Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}

	return nil
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A root layout, a home page and a not-found page",
		Files: map[string]string{
			"go.mod":             goMod,
			"mfext.json":         projectConfig,
			".gitignore":         gitignore,
			"cmd/server/main.go": serverMain,
			"app/layout.go":      rootLayout,
			"app/page.go":        homePage,
			"app/not_found.go":   notFoundPage,
		},
	}
}

func fullTemplate() *Template {
	files := minimalTemplate().Files
	for k, v := range map[string]string{
		"README.md":                   readme,
		"cmd/client/main.go":          clientMain,
		"app/counter_client.go":       counterClient,
		"app/dashboard/layout.go":     dashboardLayout,
		"app/dashboard/page.go":       dashboardPage,
		"app/dashboard/loading.go":    dashboardLoading,
		"app/dashboard/error.go":      dashboardError,
		"app/dashboard/stats/page.go": statsPage,
		"public/app.css":              stylesheet,
	} {
		files[k] = v
	}
	return &Template{
		Name:        "full",
		Description: "Nested routes, boundaries, a client component and the browser client",
		Files:       files,
	}
}
