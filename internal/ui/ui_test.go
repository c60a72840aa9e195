package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/crolly/mug/internal/project"
)

func headless() *HeadlessManager {
	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	return hm
}

func TestThemeNoColor(t *testing.T) {
	th := NewTheme(true)
	tests := []struct {
		got, want string
	}{
		{th.Title("mug"), "mug"},
		{th.Success("done"), "✓ done"},
		{th.Warning("careful"), "! careful"},
		{th.Error("failed"), "✗ failed"},
		{th.Muted("quiet"), "quiet"},
		{th.Bullet("+", "file"), "+ file"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestHeadlessManager(t *testing.T) {
	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	if !hm.IsHeadless() {
		t.Error("forced headless not honoured")
	}
	hm.ForceHeadless(false)
	if hm.IsHeadless() {
		t.Error("forced interactive not honoured")
	}
	hm.ClearForce()
	if hm.forced != nil {
		t.Error("ClearForce kept the override")
	}
}

func TestConfirmer(t *testing.T) {
	t.Run("assume_yes", func(t *testing.T) {
		hm := headless()
		hm.AssumeYes(true)
		ok, err := NewConfirmer(NewTheme(true), hm).Confirm("Remove?", "")
		if err != nil || !ok {
			t.Errorf("Confirm = %v, %v", ok, err)
		}
	})

	t.Run("headless_without_yes", func(t *testing.T) {
		ok, err := NewConfirmer(NewTheme(true), headless()).Confirm("Remove?", "")
		if ok || !errors.Is(err, ErrHeadlessNoConfirm) {
			t.Errorf("Confirm = %v, %v", ok, err)
		}
	})
}

func TestHeadlessSpinner(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressTo(NewTheme(true), headless(), &buf)

	s := p.Spinner("building")
	s.SetTitle("deploying")
	s.Stop()
	s.SetTitle("ignored")

	want := "... building\n... deploying\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRenderMarkdownPlain(t *testing.T) {
	out, err := RenderMarkdown(NewTheme(true), headless(), "# Remove order\n\n- delete `functions/order`\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Remove order") || !strings.Contains(out, "functions/order") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteProjectTree(t *testing.T) {
	m := project.New("shop", t.TempDir())
	r := project.NewResource("order")
	r.Attributes = []project.Attribute{{Name: "customer", GoType: "string"}}
	r.Functions = project.CRUDFunctions(r)
	r.Auth = &project.AuthBinding{Type: "cognito", Exclude: []string{"listOrder"}}
	m.Resources = append(m.Resources, r)
	m.FunctionGroups = append(m.FunctionGroups, project.FunctionGroup{
		Name:      "default",
		Functions: []project.Function{project.NewFunction("health", "default", "defaults/health", "get")},
	})

	var buf bytes.Buffer
	if err := WriteProjectTree(&buf, m); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"shop",
		"order (resource) [auth: cognito]",
		"customer string",
		"createOrder  POST /orders",
		"listOrder  GET /orders (public)",
		"default (group)",
		"health  GET /defaults/health",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree misses %q:\n%s", want, out)
		}
	}
}
