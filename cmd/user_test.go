package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunUserCreate(t *testing.T) {
	_, server := newFakeBackend(t)
	d := testDeps(t, server.URL, adminSession)

	var buf bytes.Buffer
	if exitCode := runUserCreate(context.Background(), &buf, d, "bob", "secret", false); exitCode != 0 {
		t.Fatalf("expected exit 0, got %d: %s", exitCode, buf.String())
	}
	if strings.TrimSpace(buf.String()) != "User created successfully" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestRunUserCreate_NotAdmin(t *testing.T) {
	b, server := newFakeBackend(t)
	d := testDeps(t, server.URL, userSession)

	var buf bytes.Buffer
	if exitCode := runUserCreate(context.Background(), &buf, d, "bob", "secret", true); exitCode != exitLocal {
		t.Errorf("expected exit %d, got %d", exitLocal, exitCode)
	}
	if got := b.requests.Load(); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

func TestRunUserCreate_MissingPassword(t *testing.T) {
	b, server := newFakeBackend(t)
	d := testDeps(t, server.URL, adminSession)

	var buf bytes.Buffer
	if exitCode := runUserCreate(context.Background(), &buf, d, "bob", "", false); exitCode != exitLocal {
		t.Errorf("expected exit %d, got %d", exitLocal, exitCode)
	}
	if !strings.Contains(buf.String(), "User ID and password are required") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if got := b.requests.Load(); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

func TestRunUserCreate_RevokedOnServer(t *testing.T) {
	_, server := newFakeBackend(t)
	d := testDeps(t, server.URL, adminSession)
	// The local session still claims admin, but the server knows a different token.
	stale := adminSession
	stale.Token = "expired-token"
	if err := d.store.Set(stale); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	var buf bytes.Buffer
	if exitCode := runUserCreate(context.Background(), &buf, d, "bob", "secret", false); exitCode != exitRejected {
		t.Errorf("expected exit %d, got %d", exitRejected, exitCode)
	}
	if !strings.Contains(buf.String(), "Error: Unauthorized") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
