package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/module"

	mferrors "github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/internal/templates"
)

func newCmd() *cobra.Command {
	var (
		template    string
		modulePath  string
		description string
		tidy        bool
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new mfext project",
		Long: `Create a new mfext project in a directory named after the project.

Templates:
  minimal   a root layout, a home page and a not-found page
  full      nested routes, boundaries, a client component and the browser client (default)

Examples:
  mfext new shop
  mfext new shop --module=github.com/acme/shop --template=minimal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(args[0], template, modulePath, description, tidy)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "full", "Project template ("+strings.Join(templates.List(), ", ")+")")
	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "Go module path (default: the project name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().BoolVar(&tidy, "tidy", true, "Run 'go mod tidy' after creating the project")

	return cmd
}

func runNew(name, templateName, modulePath, description string, tidy bool) error {
	if modulePath == "" {
		modulePath = name
	}
	if !isValidProjectName(name) {
		return mferrors.New("E147").
			WithDetail("Project name '" + name + "' cannot be used as a directory name").
			WithSuggestion("Use lowercase letters, numbers, and hyphens")
	}
	if err := module.CheckPath(modulePath); err != nil && !isLocalModulePath(modulePath) {
		return mferrors.New("E147").
			WithDetail("Module path '" + modulePath + "' is invalid: " + err.Error()).
			WithSuggestion("Pass --module with a path like github.com/you/" + name)
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return mferrors.New("E147").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	fmt.Println()
	info("Creating %s from the '%s' template...", name, templateName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	err = tmpl.Create(projectDir, templates.Config{
		ProjectName: name,
		ModulePath:  modulePath,
		Description: description,
	})
	if err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	if tidy {
		info("Resolving dependencies...")
		if err := goModTidy(projectDir); err != nil {
			warn("Could not run 'go mod tidy': %v", err)
		}
	}

	fmt.Println()
	success("Created %s/", name)
	fmt.Println()
	fmt.Println("  To get started:")
	fmt.Println()
	fmt.Printf("    cd %s\n", name)
	fmt.Println("    mfext dev")
	fmt.Println()
	fmt.Println("  Your app will be running at http://localhost:5000")
	fmt.Println()
	return nil
}

func isValidProjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i, r := range name {
		if r == ' ' || r == '/' || r == '\\' {
			return false
		}
		if i == 0 && (r >= '0' && r <= '9' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// isLocalModulePath accepts single-element paths such as "shop", which
// module.CheckPath rejects but go mod init allows for local projects.
func isLocalModulePath(p string) bool {
	return !strings.ContainsAny(p, "/\\ ") && module.CheckImportPath(p) == nil
}

func goModTidy(dir string) error {
	if _, err := exec.LookPath("go"); err != nil {
		return err
	}
	cmd := exec.Command("go", "mod", "tidy")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
