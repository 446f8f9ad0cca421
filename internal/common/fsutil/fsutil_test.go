package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandHome(t *testing.T) {
	home := fakeHome(t)
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if p, err := ExpandHome("~"); err != nil || p != home {
		t.Fatalf("expected %q, got %q err=%v", home, p, err)
	}
	exp, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "models" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestResolve(t *testing.T) {
	home := fakeHome(t)
	if _, err := Resolve("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
	got, err := Resolve("~/model.onnx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(home, "model.onnx") {
		t.Fatalf("got %q", got)
	}
	rel, err := Resolve("model.onnx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !filepath.IsAbs(rel) {
		t.Fatalf("expected absolute path, got %q", rel)
	}
}

func TestPathChecks(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "classes.json")
	if err := os.WriteFile(f, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !PathExists(f) || !IsRegularFile(f) {
		t.Fatalf("file checks failed for %s", f)
	}
	if !PathExists(dir) || IsRegularFile(dir) {
		t.Fatalf("dir checks failed for %s", dir)
	}
	missing := filepath.Join(dir, "missing")
	if PathExists(missing) || IsRegularFile(missing) {
		t.Fatalf("missing path reported present")
	}
}
