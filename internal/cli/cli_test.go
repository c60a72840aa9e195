package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/crolly/mug/internal/engine"
	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/ui"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"validation", project.NewError(project.ErrValidation, "add", "x"), ExitValidation},
		{"duplicate", project.NewError(project.ErrDuplicateName, "add", "x"), ExitDuplicate},
		{"unknown_group", project.NewError(project.ErrUnknownGroup, "add", "x"), ExitUnknownOwner},
		{"unknown_target", project.NewError(project.ErrUnknownTarget, "auth", "x"), ExitUnknownOwner},
		{"not_found", project.NewError(project.ErrNotFound, "remove", "x"), ExitNotFound},
		{"exists", project.NewError(project.ErrAlreadyExists, "create", "x"), ExitExists},
		{"bound", project.NewError(project.ErrAlreadyBound, "auth", "x"), ExitBound},
		{"corrupt", project.NewError(project.ErrCorruptModel, "load", "x"), ExitCorrupt},
		{"write", project.NewError(project.ErrWrite, "save", "x"), ExitWrite},
		{"materialization", project.NewError(project.ErrMaterialization, "add", "x"), ExitWrite},
		{"inconsistent", project.NewError(project.ErrInconsistent, "add", "x"), ExitInconsistent},
		{"external_tool", fmt.Errorf("deploy: %w", project.ErrExternalTool), ExitExternalTool},
		{"headless_confirm", ui.ErrHeadlessNoConfirm, ExitValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	attrs, err := parseAttributes([]string{"customer:string", " total : float64 ", ""})
	if err != nil {
		t.Fatal(err)
	}
	want := []project.Attribute{{Name: "customer", GoType: "string"}, {Name: "total", GoType: "float64"}}
	if len(attrs) != len(want) {
		t.Fatalf("attrs = %+v", attrs)
	}
	for i := range want {
		if attrs[i].Name != want[i].Name || attrs[i].GoType != want[i].GoType {
			t.Errorf("attrs[%d] = %+v, want %+v", i, attrs[i], want[i])
		}
	}

	for _, bad := range []string{"customer", "customer:", ":string"} {
		if _, err := parseAttributes([]string{bad}); !errors.Is(err, project.ErrValidation) {
			t.Errorf("parseAttributes(%q) error = %v", bad, err)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name      string
		specs     []string
		hash, rng string
		wantErr   bool
	}{
		{"empty", nil, "", "", false},
		{"bare_name", []string{"id"}, "id", "", false},
		{"hash_and_range", []string{"customer:hash", "placedAt:RANGE"}, "customer", "placedAt", false},
		{"hash_twice", []string{"a:hash", "b"}, "", "", true},
		{"range_twice", []string{"a:range", "b:range"}, "", "", true},
		{"bad_role", []string{"a:sort"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, rng, err := parseKey(tt.specs)
			if tt.wantErr {
				if !errors.Is(err, project.ErrValidation) {
					t.Errorf("error = %v", err)
				}
				return
			}
			if err != nil || hash != tt.hash || rng != tt.rng {
				t.Errorf("parseKey = %q, %q, %v", hash, rng, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	quiet, err := newLogger(&buf, "", "text")
	if err != nil {
		t.Fatal(err)
	}
	quiet.Error("hidden")
	if buf.Len() != 0 {
		t.Errorf("empty level logged %q", buf.String())
	}

	logger, err := newLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("skipped")
	logger.Warn("shown", "resource", "order")
	if out := buf.String(); strings.Contains(out, "skipped") || !strings.Contains(out, `"resource":"order"`) {
		t.Errorf("output = %q", out)
	}

	if _, err := newLogger(&buf, "loud", "text"); err == nil {
		t.Error("invalid level accepted")
	}
}

// recordingRunner stands in for make and serverless.
type recordingRunner struct {
	calls []string
}

func (r *recordingRunner) Run(_ context.Context, _ string, command []string) error {
	r.calls = append(r.calls, strings.Join(command, " "))
	return nil
}

// mug runs the command tree with args and returns its output.
func mug(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	prev := GetDeps()
	t.Cleanup(func() {
		SetDeps(prev)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	runner := &recordingRunner{}
	theme := ui.NewTheme(true)
	hm := ui.NewHeadlessManager()
	hm.ForceHeadless(true)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDeps(&Dependencies{
		Engine:    engine.New(engine.WithLogger(logger)),
		Runner:    runner,
		Theme:     theme,
		Headless:  hm,
		Progress:  ui.NewProgress(theme, hm),
		Confirmer: ui.NewConfirmer(theme, hm),
		Logger:    logger,
	})

	parent := t.TempDir()
	root := filepath.Join(parent, "shop")

	steps := []struct {
		args []string
		want string
		code int
	}{
		{[]string{"create", "shop", "--dir", parent, "--import-path", "github.com/acme/shop"}, "Created project shop", ExitOK},
		{[]string{"create", "shop", "--dir", parent}, "", ExitExists},
		{[]string{"-p", root, "add", "resource", "order", "--attributes", "customer:string,total:float64", "--crud"}, "functions/order/readOrder/main.go", ExitOK},
		{[]string{"-p", root, "add", "resource", "order"}, "", ExitDuplicate},
		{[]string{"-p", root, "add", "group", "ops"}, "", ExitOK},
		{[]string{"-p", root, "add", "function", "health"}, "functions/default/health/main.go", ExitOK},
		{[]string{"-p", root, "add", "function", "stats", "--assignedTo", "reports"}, "", ExitUnknownOwner},
		{[]string{"-p", root, "add", "auth", "order", "--exclude", "listOrder"}, "", ExitOK},
		{[]string{"-p", root, "add", "function", "ping", "--assignedTo", "ops", "--dry-run"}, "ops-ping", ExitOK},
		{[]string{"-p", root, "move", "function", "health", "--from", "default", "--to", "ops"}, "functions/ops/health", ExitOK},
		{[]string{"-p", root, "status"}, "tree matches the model", ExitOK},
		{[]string{"-p", root, "tree"}, "listOrder  GET /orders (public)", ExitOK},
		{[]string{"-p", root, "deploy", "--stage", "prod"}, "Deployed shop", ExitOK},
		{[]string{"-p", root, "debug"}, "Local API stopped shop", ExitOK},
		{[]string{"-p", root, "remove", "order", "--dry-run"}, "readOrder", ExitOK},
		{[]string{"-p", root, "remove", "order", "--dry-run=false"}, "", ExitValidation},
		{[]string{"-p", root, "remove", "order", "--yes"}, "Removed order", ExitOK},
		{[]string{"-p", root, "remove", "order", "--yes"}, "", ExitNotFound},
	}
	for _, s := range steps {
		out, err := mug(t, s.args...)
		if code := ExitCode(err); code != s.code {
			t.Fatalf("mug %s: exit %d (%v), want %d\n%s", strings.Join(s.args, " "), code, err, s.code, out)
		}
		if s.want != "" && !strings.Contains(out, s.want) {
			t.Errorf("mug %s: output misses %q:\n%s", strings.Join(s.args, " "), s.want, out)
		}
	}

	wantCalls := []string{"make build", "serverless deploy --stage prod", "make debug", "sam local start-api"}
	if !slices.Equal(runner.calls, wantCalls) {
		t.Errorf("runner calls = %v, want %v", runner.calls, wantCalls)
	}
	for _, rel := range []string{"functions/order", "functions/ops/ping"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Errorf("%s exists: %v", rel, err)
		}
	}
}
