package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/adapter/repository/memory"
	"github.com/iho/walletfy/internal/app"
	"github.com/iho/walletfy/internal/domain"
	"github.com/iho/walletfy/internal/infrastructure/config"
)

// memoryOpener shares one in-memory store across commands.
func memoryOpener(t *testing.T) opener {
	t.Helper()
	kv := memory.NewStore()
	cfg := &config.Config{
		StorageBackend: config.BackendMemory,
		SeedSampleData: true,
		Publisher:      config.PublisherNone,
		Locale:         "en",
		Timezone:       "UTC",
	}
	return func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg, zerolog.Nop(), app.Options{Registerer: prometheus.NewRegistry(), KV: kv})
	}
}

func execute(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestEventsLifecycle(t *testing.T) {
	open := memoryOpener(t)

	out, err := execute(t, open, "events", "add", "--json",
		"--name", "Freelance", "--amount", "300", "--date", "2025-03-02", "--type", "income")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var created dto.EventResponse
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode: %v (%s)", err, out)
	}

	out, err = execute(t, open, "events", "update", created.ID, "--amount", "350")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, "350.00") || !strings.Contains(out, "Freelance") {
		t.Fatalf("expected updated row, got %s", out)
	}

	out, err = execute(t, open, "events", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines != 7 {
		t.Fatalf("expected header and 7 events, got %d lines:\n%s", lines+1, out)
	}

	if _, err := execute(t, open, "events", "delete", created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err = execute(t, open, "events", "show", created.ID)
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestEventsAddRejectsInvalidInput(t *testing.T) {
	open := memoryOpener(t)

	_, err := execute(t, open, "events", "add", "--name", "", "--amount", "-1", "--date", "2025-01-01", "--type", "income")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEventsUpdateRequiresAField(t *testing.T) {
	open := memoryOpener(t)

	_, err := execute(t, open, "events", "update", "evt-1")
	if !errors.Is(err, errNothingToUpdate) {
		t.Fatalf("expected errNothingToUpdate, got %v", err)
	}
}

func TestBalanceCommands(t *testing.T) {
	open := memoryOpener(t)

	out, err := execute(t, open, "balance", "months", "--search", "jan")
	if err != nil {
		t.Fatalf("months failed: %v", err)
	}
	if !strings.Contains(out, "January 2025") || strings.Contains(out, "February 2025") {
		t.Fatalf("expected only January, got %s", out)
	}

	if _, err := execute(t, open, "balance", "set-initial", "1000"); err != nil {
		t.Fatalf("set-initial failed: %v", err)
	}
	if _, err := execute(t, open, "balance", "add", "0"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected zero top-up to be rejected, got %v", err)
	}
	if _, err := execute(t, open, "balance", "add", "abc"); err == nil {
		t.Fatal("expected unparsable amount to fail")
	}

	out, err = execute(t, open, "balance", "summary", "--json")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	var summary dto.SummaryResponse
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.FinalBalance.String() != "1440" {
		t.Fatalf("expected final balance 1440, got %s", summary.FinalBalance)
	}
}

func TestThemeCommands(t *testing.T) {
	open := memoryOpener(t)

	out, err := execute(t, open, "theme", "toggle")
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !strings.Contains(out, "theme dark") {
		t.Fatalf("expected dark theme, got %s", out)
	}

	if _, err := execute(t, open, "theme", "set", "sepia"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown theme to be rejected, got %v", err)
	}
}
