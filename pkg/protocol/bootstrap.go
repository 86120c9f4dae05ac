package protocol

import "fmt"

// BootstrapVar is the window global the server-rendered document assigns
// the bootstrap payload to.
const BootstrapVar = "__RSC_PATH__"

// AppRouterComponent identifies documents rendered by the app router.
const AppRouterComponent = "app-router"

// Bootstrap is the payload a document hands to the client on first load.
type Bootstrap struct {
	PageInfo PageInfo `json:"pageInfo"`
}

// PageInfo describes the page a document was rendered for.
type PageInfo struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Component string `json:"component"`
}

// PageTitle returns the document title for pathname.
func PageTitle(pathname string) string {
	return fmt.Sprintf("MFExt App Router - %s", pathname)
}

// NewBootstrap returns the bootstrap payload for pathname.
func NewBootstrap(pathname string) Bootstrap {
	return Bootstrap{PageInfo: PageInfo{
		Path:      pathname,
		Title:     PageTitle(pathname),
		Component: AppRouterComponent,
	}}
}
