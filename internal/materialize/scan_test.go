package materialize

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/crolly/mug/internal/project"
)

func TestInspect(t *testing.T) {
	root := t.TempDir()
	m := newModel(root)
	apply(t, root, nil, m)

	in, err := Inspect(root, m)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !in.Clean() {
		t.Fatalf("fresh tree not clean: %+v", in)
	}

	if err := os.Remove(filepath.Join(root, "functions", "order", "listOrder", "main.go")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "functions/default/ghost/main.go", "package main\n")
	writeFile(t, root, "functions/legacy/old/main.go", "package main\n")
	writeFile(t, root, "functions/default/health/helper.go", "package main\n")

	in, err = Inspect(root, m)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(in.Missing, []string{"functions/order/listOrder/main.go"}) {
		t.Errorf("Missing = %v", in.Missing)
	}
	if !slices.Equal(in.Orphans, []string{"functions/default/ghost", "functions/legacy/old"}) {
		t.Errorf("Orphans = %v", in.Orphans)
	}
}

func TestOrphansWarnedNotDeleted(t *testing.T) {
	root := t.TempDir()
	m := newModel(root)
	writeFile(t, root, "functions/default/ghost/main.go", "package main\n")

	rep, _ := apply(t, root, nil, m)

	if !exists(root, "functions/default/ghost/main.go") {
		t.Error("orphan deleted")
	}
	if len(rep.Warnings) != 1 {
		t.Errorf("warnings = %v", rep.Warnings)
	}
}

func TestOrphansWithoutFunctionsDir(t *testing.T) {
	orphans, err := Orphans(t.TempDir(), project.New("empty", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 0 {
		t.Errorf("orphans = %v", orphans)
	}
}
