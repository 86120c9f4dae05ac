// Package templates scaffolds new mfext projects.
//
// # Available Templates
//
//   - minimal: a root layout, a home page and a not-found page
//   - full: adds a nested dashboard with loading and error boundaries, a
//     client component, a stylesheet and the browser client
//
// # Usage
//
//	tmpl, err := templates.Get("full")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(projectDir, templates.Config{ProjectName: "shop", ModulePath: "example.com/shop"}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	[[.ProjectName]]    - Name of the project
//	[[.ModulePath]]     - Go module path
//	[[.Description]]    - Project description
//	[[.FrameworkPath]]  - mfext module path
//	[[.FrameworkVersion]] - mfext version required by go.mod
//	[[.GoVersion]]      - go directive of go.mod
package templates
