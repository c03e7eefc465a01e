package testutil

import (
	"bytes"
	"os"
	"testing"
)

func TestSandboxReadWrite(t *testing.T) {
	sb, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	data := []byte("hello world")
	if err := sb.WriteFile("file.txt", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := sb.ReadFile("file.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("data mismatch: got %q want %q", got, data)
	}
}

func TestSandboxCleanup(t *testing.T) {
	sb, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	path := sb.Path("temp")
	if err := sb.WriteFile("temp", []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := sb.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected sandbox to be removed")
	}
}

func TestSandboxPathIsolatesMultipleInstances(t *testing.T) {
	sbA, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sbA.Cleanup()
	sbB, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sbB.Cleanup()

	// Two sandboxes standing in for two cache digests must never collide
	// on disk even when given the same file name.
	const name = "digest.deps.json"
	if err := sbA.WriteFile(name, []byte("a"), 0600); err != nil {
		t.Fatalf("WriteFile A failed: %v", err)
	}
	if err := sbB.WriteFile(name, []byte("b"), 0600); err != nil {
		t.Fatalf("WriteFile B failed: %v", err)
	}
	gotA, err := sbA.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile A failed: %v", err)
	}
	gotB, err := sbB.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile B failed: %v", err)
	}
	if string(gotA) != "a" || string(gotB) != "b" {
		t.Fatalf("sandbox contents leaked across instances: A=%q B=%q", gotA, gotB)
	}
}
