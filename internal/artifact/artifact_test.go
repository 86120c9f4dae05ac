package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/internal/config"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	meta    map[string]*s3.PutObjectInput
	fail    map[string]bool
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{
		objects: map[string]string{},
		meta:    map[string]*s3.PutObjectInput{},
		fail:    map[string]bool{},
	}
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if b.fail[key] {
		return nil, errors.Base("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = string(data)
	b.meta[key] = in
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"client.js":       "console.log(1)",
		"client.wasm":     "\x00asm",
		"css/app.css":     "body{}",
		"img/logo.svg":    "<svg/>",
		"robots.txt":      "User-agent: *",
		"fonts/inter.bin": "xx",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// codedError returns the MfextError in err's chain or fails the test.
func codedError(t *testing.T, err error) *mferrors.MfextError {
	t.Helper()
	var me *mferrors.MfextError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want an MfextError", err)
	}
	return me
}

func TestPublish(t *testing.T) {
	dir := writeTree(t)
	bucket := newFakeBucket()
	p := New(bucket, Options{
		Bucket:    "assets",
		Prefix:    "/static/",
		Immutable: []string{"client.wasm"},
	})

	res, err := p.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	wantKeys := []string{
		"static/client.js",
		"static/client.wasm",
		"static/css/app.css",
		"static/fonts/inter.bin",
		"static/img/logo.svg",
		"static/robots.txt",
	}
	if got := bucket.keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("keys = %v, want %v", got, wantKeys)
	}
	if len(res.Objects) != 6 || res.DryRun {
		t.Errorf("result = %d objects, dry run %v; want 6, false", len(res.Objects), res.DryRun)
	}
	if got := bucket.objects["static/css/app.css"]; got != "body{}" {
		t.Errorf("app.css body = %q", got)
	}

	wasm := bucket.meta["static/client.wasm"]
	checks := []struct{ name, got, want string }{
		{"wasm content type", aws.ToString(wasm.ContentType), "application/wasm"},
		{"wasm cache control", aws.ToString(wasm.CacheControl), cacheImmutable},
		{"wasm bucket", aws.ToString(wasm.Bucket), "assets"},
		{"js content type", aws.ToString(bucket.meta["static/client.js"].ContentType), "text/javascript; charset=utf-8"},
		{"js cache control", aws.ToString(bucket.meta["static/client.js"].CacheControl), cacheShort},
		{"bin content type", aws.ToString(bucket.meta["static/fonts/inter.bin"].ContentType), "application/octet-stream"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if n := aws.ToInt64(wasm.ContentLength); n != 4 {
		t.Errorf("wasm content length = %d, want 4", n)
	}
}

func TestPublish_DryRun(t *testing.T) {
	dir := writeTree(t)
	bucket := newFakeBucket()
	p := New(bucket, Options{Bucket: "assets", DryRun: true})

	res, err := p.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if keys := bucket.keys(); len(keys) != 0 {
		t.Errorf("dry run uploaded %v", keys)
	}
	if !res.DryRun {
		t.Error("result not marked as dry run")
	}
	if len(res.Objects) != 6 {
		t.Fatalf("len(Objects) = %d, want 6", len(res.Objects))
	}
	if res.Objects[0].Key != "client.js" {
		t.Errorf("first key = %q, want client.js", res.Objects[0].Key)
	}

	var total int64
	for _, o := range res.Objects {
		total += o.Size
	}
	if res.Bytes != total {
		t.Errorf("Bytes = %d, want %d", res.Bytes, total)
	}
}

func TestPublish_ReportsEveryFailure(t *testing.T) {
	dir := writeTree(t)
	bucket := newFakeBucket()
	bucket.fail["css/app.css"] = true
	bucket.fail["robots.txt"] = true
	p := New(bucket, Options{Bucket: "assets", Concurrency: 2})

	_, err := p.Publish(context.Background(), dir)
	if err == nil {
		t.Fatal("Publish() succeeded with failing uploads")
	}

	me := codedError(t, err)
	if me.Code != "E162" {
		t.Errorf("code = %s, want E162", me.Code)
	}
	if !strings.Contains(err.Error()+me.Detail, "css/app.css") || !strings.Contains(me.Detail, "robots.txt") {
		t.Errorf("detail %q does not list both failures", me.Detail)
	}
	if n := len(bucket.keys()); n != 4 {
		t.Errorf("uploaded %d objects, want 4", n)
	}
}

func TestPublish_NoBucket(t *testing.T) {
	p := New(newFakeBucket(), Options{})

	_, err := p.Publish(context.Background(), t.TempDir())

	if me := codedError(t, err); me.Code != "E162" {
		t.Errorf("code = %s, want E162", me.Code)
	}
}

func TestPublish_MissingDir(t *testing.T) {
	p := New(newFakeBucket(), Options{Bucket: "assets"})

	_, err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "dist", "public"))

	if me := codedError(t, err); me.Code != "E141" {
		t.Errorf("code = %s, want E141", me.Code)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"client.wasm":  "application/wasm",
		"wasm_exec.js": "text/javascript; charset=utf-8",
		"app.css":      "text/css; charset=utf-8",
		"data.unknown": "application/octet-stream",
	}
	for name, want := range tests {
		if got := contentType(name); got != want {
			t.Errorf("contentType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(config.PublishConfig{
		Region:   "eu-west-1",
		Endpoint: "http://localhost:9000",
	})
	opts := client.Options()

	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q", opts.Region)
	}
	if got := aws.ToString(opts.BaseEndpoint); got != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %q", got)
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle = false, want true for custom endpoints")
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); err == nil {
		t.Error("envCredentials() succeeded without keys")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatalf("envCredentials() error = %v", err)
	}
	if creds.AccessKeyID != "AKID" || creds.Source != "environment" {
		t.Errorf("creds = %+v", creds)
	}
}
