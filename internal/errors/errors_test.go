package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "routing error",
			code:    "E100",
			wantMsg: "Route manifest not found",
			wantCat: CategoryRouting,
		},
		{
			name:    "protocol error",
			code:    "E060",
			wantMsg: "Invalid component stream",
			wantCat: CategoryProtocol,
		},
		{
			name:    "build error",
			code:    "E160",
			wantMsg: "Code generation failed",
			wantCat: CategoryBuild,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New("E161").Wrap(cause)

	if got, want := err.Error(), "E161: Client build failed: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	plain := Newf(CategoryCLI, "unknown mode %q", "x")
	if got, want := plain.Error(), `unknown mode "x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E142") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E141")
	if got := FromError(orig, "E142"); got != orig {
		t.Error("FromError should return an existing MfextError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E142")
	if wrapped.Code != "E142" {
		t.Errorf("Code = %q, want E142", wrapped.Code)
	}
	if wrapped.Wrapped == nil || wrapped.Wrapped.Error() != "boom" {
		t.Errorf("Wrapped = %v, want boom", wrapped.Wrapped)
	}
}

func TestWithLocationFromError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.go")
	src := "package app\n\nfunc Page() {\n\tundefined()\n}\n"
	if err := os.WriteFile(file, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	buildErr := stderrors.New("# example/app\n" + file + ":4:2: undefined: undefined")
	err := New("E142").WithLocationFromError(buildErr)

	if err.Location == nil {
		t.Fatal("Location should be set")
	}
	if err.Location.Line != 4 || err.Location.Column != 2 {
		t.Errorf("Location = %s, want line 4 column 2", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should contain source lines")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E141").
		WithSuggestion("Run 'mfext build' first").
		Wrap(stderrors.New("stat dist: no such file or directory"))
	out := err.Format()

	for _, want := range []string{
		"ERROR E141: Build files not found",
		"Hint: Run 'mfext build' first",
		"Caused by: stat dist",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E142")
	err.Location = &Location{File: "app/page.go", Line: 3}

	if got, want := err.FormatCompact(), "app/page.go:3: E142: Build failed"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestAllCodesSorted(t *testing.T) {
	codes := AllCodes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	if _, ok := Template("E100"); !ok {
		t.Error("Template(E100) not found")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
