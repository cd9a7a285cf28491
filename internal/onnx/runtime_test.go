package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-piper-tts/internal/config"
)

func TestDetectRuntime_ConfigPathWins(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libonnxruntime.so.1.23.0")
	if err := os.WriteFile(lib, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PIPERTTS_ORT_LIB", "/nonexistent/other.so")

	info, err := DetectRuntime(config.RuntimeConfig{ORTLibraryPath: lib})
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	if info.LibraryPath != lib {
		t.Errorf("LibraryPath = %q; want %q", info.LibraryPath, lib)
	}
	if info.Version != "1.23.0" {
		t.Errorf("Version = %q; want inferred 1.23.0", info.Version)
	}
}

func TestDetectRuntime_EnvFallback(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libonnxruntime.so")
	if err := os.WriteFile(lib, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PIPERTTS_ORT_LIB", lib)
	t.Setenv("ORT_VERSION", "")

	info, err := DetectRuntime(config.RuntimeConfig{})
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	if info.LibraryPath != lib {
		t.Errorf("LibraryPath = %q; want %q", info.LibraryPath, lib)
	}
	if info.Version != "unknown" {
		t.Errorf("Version = %q; want unknown for versionless name", info.Version)
	}
}

func TestDetectRuntime_ConfiguredVersionWins(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libonnxruntime.so.1.23.0")
	if err := os.WriteFile(lib, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	info, err := DetectRuntime(config.RuntimeConfig{ORTLibraryPath: lib, ORTVersion: "9.9.9"})
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	if info.Version != "9.9.9" {
		t.Errorf("Version = %q; want configured 9.9.9", info.Version)
	}
}

func TestDetectRuntime_MissingPathFails(t *testing.T) {
	_, err := DetectRuntime(config.RuntimeConfig{ORTLibraryPath: "/nonexistent/libonnxruntime.so"})
	if err == nil {
		t.Fatal("expected error for missing library path")
	}
}
