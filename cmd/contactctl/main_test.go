package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("from-stdin\n"))
	rootCmd.SetArgs([]string{"hash-password"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")); err != nil {
		t.Errorf("hash does not match input: %v", err)
	}
}

func TestExportCommand_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "ID,First Name,Last Name,Email,Subject,Message,Created At" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestMigrateCommand_RejectsNonPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	rootCmd.SetArgs([]string{"migrate", "status"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Errorf("expected postgres-only error, got %v", err)
	}
}
