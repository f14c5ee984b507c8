package catalog

import (
	"context"
	"testing"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return c
}

func TestSaveAndLoad(t *testing.T) {
	c := openTestCatalog(t)
	defer c.Close()
	ctx := context.Background()

	const program = "READ A\nREAD B\nADD\nWRITE C\n"
	if err := c.Save(ctx, "sum", program); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := c.Load(ctx, "sum")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != program {
		t.Errorf("Load = %q, want %q", got, program)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	c := openTestCatalog(t)
	defer c.Close()
	ctx := context.Background()

	if err := c.Save(ctx, "p", "READ A\nWRITE B\n"); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(ctx, "p", "READ A\nCAST int8\nWRITE B\n"); err != nil {
		t.Fatal(err)
	}
	got, err := c.Load(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "READ A\nCAST int8\nWRITE B\n" {
		t.Errorf("Load after overwrite = %q, want the second save", got)
	}
}

func TestLoadMissingIsError(t *testing.T) {
	c := openTestCatalog(t)
	defer c.Close()

	if _, err := c.Load(context.Background(), "does-not-exist"); err == nil {
		t.Errorf("expected an error loading a program that was never saved")
	}
}

func TestList(t *testing.T) {
	c := openTestCatalog(t)
	defer c.Close()
	ctx := context.Background()

	for _, name := range []string{"beta", "alpha", "gamma"} {
		if err := c.Save(ctx, name, "READ A\nWRITE A\n"); err != nil {
			t.Fatal(err)
		}
	}

	names, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(names) != len(want) {
		t.Fatalf("List returned %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestUnsupportedDriverIsError(t *testing.T) {
	if _, err := Open("oracle", "irrelevant"); err == nil {
		t.Errorf("expected an error for an unsupported driver")
	}
}
