package loader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/render"
	"github.com/kyori-mfv/mfext/pkg/router"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

func named(name string) app.Component {
	return func(ctx context.Context, props app.Props) *vdom.VNode {
		return vdom.Div(vdom.Class(name), props.Children)
	}
}

func html(t *testing.T, c app.Component, props app.Props) string {
	t.Helper()
	out, err := render.NewRenderer(render.RendererConfig{}).RenderToString(context.Background(), c(context.Background(), props))
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	return out
}

type countingImporter struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	delay time.Duration
}

func (c *countingImporter) Import(ctx context.Context, id string) (*Module, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[id]++
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if err := c.fail[id]; err != nil {
		return nil, err
	}
	if id == "no-default.go" {
		return &Module{}, nil
	}
	return &Module{Default: named(id)}, nil
}

func (c *countingImporter) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[id]
}

var route = &router.ResolvedRoute{
	Path:    "/dashboard",
	Page:    "dashboard/page.go",
	Layouts: []string{"broken-layout", "dashboard/layout.go"},
}

func TestLoadToleratesFailures(t *testing.T) {
	imp := &countingImporter{fail: map[string]error{"broken-layout": errors.New("import failed")}}
	l := New(imp)

	set := l.Load(context.Background(), route)
	if len(set) != 3 {
		t.Fatalf("Load() returned %d components, want 3", len(set))
	}

	for _, id := range []string{"dashboard/page.go", "dashboard/layout.go"} {
		want := `<div class="` + id + `"></div>`
		if got := html(t, set[id], app.Props{}); got != want {
			t.Errorf("%s = %q, want %q", id, got, want)
		}
	}

	broken := html(t, set["broken-layout"], app.Props{Children: vdom.Span("inner")})
	for _, want := range []string{"Failed to load component", "broken-layout", "<span>inner</span>"} {
		if !strings.Contains(broken, want) {
			t.Errorf("fallback layout missing %q:\n%s", want, broken)
		}
	}
}

func TestLoadWithoutFallbacks(t *testing.T) {
	imp := &countingImporter{fail: map[string]error{"broken-layout": errors.New("import failed")}}
	l := New(imp, WithoutFallbacks())

	set := l.Load(context.Background(), route)
	if len(set) != 2 {
		t.Errorf("Load() returned %d components, want 2", len(set))
	}
	if _, ok := set["broken-layout"]; ok {
		t.Error("failed import should be absent without fallbacks")
	}

	_, err := app.Compose(context.Background(), route, set, app.Strict())
	if !errors.Is(err, app.ErrMissingLayout) {
		t.Errorf("Compose() error = %v, want ErrMissingLayout", err)
	}
}

func TestLoadMissingDefault(t *testing.T) {
	l := New(&countingImporter{})
	set := l.Load(context.Background(), &router.ResolvedRoute{Path: "/", Page: "no-default.go"})
	if got := html(t, set["no-default.go"], app.Props{}); !strings.Contains(got, "mfext-load-error") {
		t.Errorf("missing default export rendered %q", got)
	}
}

func TestLoadCaches(t *testing.T) {
	imp := &countingImporter{fail: map[string]error{"broken-layout": errors.New("boom")}}
	cache := NewCache()
	l := New(imp, WithCache(cache))
	ctx := context.Background()

	l.Load(ctx, route)
	l.Load(ctx, route)

	if n := imp.count("dashboard/page.go"); n != 1 {
		t.Errorf("page imported %d times, want 1", n)
	}
	if n := imp.count("dashboard/layout.go"); n != 1 {
		t.Errorf("layout imported %d times, want 1", n)
	}
	// Fallbacks are not cached.
	if n := imp.count("broken-layout"); n != 2 {
		t.Errorf("broken layout imported %d times, want 2", n)
	}
	if n := cache.Len(); n != 2 {
		t.Errorf("cache.Len() = %d, want 2", n)
	}

	l.ClearCache()
	if n := cache.Len(); n != 0 {
		t.Errorf("cache.Len() after ClearCache = %d, want 0", n)
	}
	l.Load(ctx, route)
	if n := imp.count("dashboard/page.go"); n != 2 {
		t.Errorf("page imported %d times after ClearCache, want 2", n)
	}
}

func TestLoadCollapsesConcurrentImports(t *testing.T) {
	imp := &countingImporter{delay: 20 * time.Millisecond}
	l := New(imp)
	r := &router.ResolvedRoute{Path: "/", Page: "page.go"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Load(context.Background(), r)
		}()
	}
	wg.Wait()

	if n := imp.count("page.go"); n != 1 {
		t.Errorf("page imported %d times, want 1", n)
	}
}

func TestLoadInParallel(t *testing.T) {
	var active, peak int32
	imp := ImporterFunc(func(ctx context.Context, id string) (*Module, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return &Module{Default: named(id)}, nil
	})

	New(imp).Load(context.Background(), &router.ResolvedRoute{
		Path: "/a", Page: "a/page.go", Layouts: []string{"layout.go", "a/layout.go"},
	})
	if p := atomic.LoadInt32(&peak); p < 2 {
		t.Errorf("peak concurrent imports = %d, want at least 2", p)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) ComponentLoaded(id string, cached bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("%s cached=%v failed=%v", id, cached, err != nil))
}

func TestObserver(t *testing.T) {
	rec := &recorder{}
	l := New(&countingImporter{}, WithObserver(rec))
	r := &router.ResolvedRoute{Path: "/", Page: "page.go"}

	l.Load(context.Background(), r)
	l.Load(context.Background(), r)

	want := []string{"page.go cached=false failed=false", "page.go cached=true failed=false"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("page.go", named("home"))
	reg.Register("layout.go", named("root"))

	if got, want := reg.IDs(), []string{"layout.go", "page.go"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	mod, err := reg.Import(context.Background(), "page.go")
	if err != nil {
		t.Fatalf("Import(page.go) error = %v", err)
	}
	if mod.Default == nil {
		t.Fatal("Import(page.go) returned no default export")
	}

	_, err = reg.Import(context.Background(), "missing.go")
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Import(missing.go) error = %v, want ErrNotRegistered", err)
	}
	if err != nil && !strings.Contains(err.Error(), "missing.go") {
		t.Errorf("error %q does not name the component", err)
	}
}
