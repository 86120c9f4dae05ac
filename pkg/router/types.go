package router

// Segment is one directory level of the route tree.
//
// Component identifiers are slash-separated file paths relative to the app
// directory, e.g. "dashboard/page.go".
type Segment struct {
	Path     string              `json:"path"`
	Page     string              `json:"page,omitempty"`
	Layout   string              `json:"layout,omitempty"`
	Loading  string              `json:"loading,omitempty"`
	Error    string              `json:"error,omitempty"`
	NotFound string              `json:"notFound,omitempty"`
	Children map[string]*Segment `json:"children"`
}

func newSegment(path string) *Segment {
	return &Segment{Path: path, Children: map[string]*Segment{}}
}

// ResolvedRoute is the result of matching a path against the tree.
type ResolvedRoute struct {
	Path     string   `json:"path"`
	Segments []string `json:"segments"`
	Page     string   `json:"page"`
	Layouts  []string `json:"layouts"`
}

// Components returns the identifiers to load for the route: layouts root-most
// first, then the page.
func (r *ResolvedRoute) Components() []string {
	ids := make([]string, 0, len(r.Layouts)+1)
	ids = append(ids, r.Layouts...)
	return append(ids, r.Page)
}

// Manifest is the persisted route table and tree. Maps are serialized in key
// order, so the JSON form of equal manifests is byte-identical.
type Manifest struct {
	Routes map[string]*ResolvedRoute `json:"routes"`
	Tree   *Segment                  `json:"tree"`
}

// EmptyManifest returns a manifest with no routes and a bare root.
func EmptyManifest() *Manifest {
	return &Manifest{
		Routes: map[string]*ResolvedRoute{},
		Tree:   newSegment("/"),
	}
}

// Special file kinds.
const (
	KindPage     = "page"
	KindLayout   = "layout"
	KindLoading  = "loading"
	KindError    = "error"
	KindNotFound = "not-found"
)

// kindAliases maps reserved base names (extension stripped) to file kinds.
var kindAliases = map[string]string{
	"page":      KindPage,
	"layout":    KindLayout,
	"loading":   KindLoading,
	"error":     KindError,
	"not-found": KindNotFound,
	"not_found": KindNotFound,
}

// ScannedFile is a special file found by the scanner.
type ScannedFile struct {
	// Dir is the containing directory relative to the root, "." for the root
	Dir string

	// Kind is one of the Kind constants
	Kind string

	// ID is the component identifier
	ID string
}
