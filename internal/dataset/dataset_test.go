package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/gestureprep/internal/types"
)

func TestDefaultClasses(t *testing.T) {
	classes := DefaultClasses()
	if len(classes) != 50 {
		t.Fatalf("Expected 50 classes, got %d", len(classes))
	}

	checks := map[int]string{0: "0", 9: "9", 10: "A", 35: "Z", 36: "Z0", 39: "Z3", 40: "bak0", 49: "bak9"}
	for i, want := range checks {
		if classes[i] != want {
			t.Errorf("classes[%d] = %q, want %q", i, classes[i], want)
		}
	}

	seen := make(map[string]bool)
	for _, c := range classes {
		if seen[c] {
			t.Errorf("Duplicate class %q", c)
		}
		seen[c] = true
	}
}

func TestValidateClass(t *testing.T) {
	tests := []struct {
		class string
		ok    bool
	}{
		{"A", true},
		{"bak7", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../x", false},
		{"a/b", false},
		{`a\b`, false},
		{".hidden", false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			err := ValidateClass(tt.class)
			if tt.ok && err != nil {
				t.Errorf("ValidateClass(%q) = %v, want nil", tt.class, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("ValidateClass(%q) accepted an unsafe name", tt.class)
			}
		})
	}

	if err := ValidateClasses(DefaultClasses()); err != nil {
		t.Errorf("Default classes rejected: %v", err)
	}
	if err := ValidateClasses([]string{"A", "../B"}); err == nil {
		t.Error("Expected the second name to be rejected")
	}
}

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("/data/samples")
	if got, want := l.DisplayPath("K"), filepath.Join("/data/samples", "K", "BMP"); got != want {
		t.Errorf("DisplayPath = %s, want %s", got, want)
	}
	if got, want := l.ProcessPath("K"), filepath.Join("/data/samples", "K", "PGM"); got != want {
		t.Errorf("ProcessPath = %s, want %s", got, want)
	}
	if got, want := l.TierPath("bak3", 64), filepath.Join("/data/samples", "bak3", "64"); got != want {
		t.Errorf("TierPath = %s, want %s", got, want)
	}
}

func TestLayoutValidate(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
		missing bool
	}{
		{name: "Valid", layout: NewLayout(root)},
		{name: "Empty root", layout: Layout{DisplayDir: "BMP", ProcessDir: "PGM"}, wantErr: true},
		{name: "Missing root", layout: NewLayout(filepath.Join(root, "nope")), wantErr: true, missing: true},
		{name: "Same trees", layout: Layout{Root: root, DisplayDir: "PGM", ProcessDir: "PGM"}, wantErr: true},
		{name: "Nested tree name", layout: Layout{Root: root, DisplayDir: "a/b", ProcessDir: "PGM"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var merr *types.MissingDirectoryError
			if errors.As(err, &merr) != tt.missing {
				t.Errorf("MissingDirectoryError = %v, want %v", errors.As(err, &merr), tt.missing)
			}
		})
	}
}

func TestListNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pgm", "a.pgm", ".hidden", ".tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	names, err := ListNames(dir)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a.pgm" || names[1] != "b.pgm" {
		t.Errorf("Expected [a.pgm b.pgm], got %v", names)
	}

	_, err = ListNames(filepath.Join(dir, "missing"))
	var merr *types.MissingDirectoryError
	if !errors.As(err, &merr) {
		t.Errorf("Expected MissingDirectoryError, got %v", err)
	}
}

func TestListTiers(t *testing.T) {
	l := NewLayout(t.TempDir())
	for _, d := range []string{"32", "128", "PGM", "BMP", "64", "0"} {
		if err := os.MkdirAll(filepath.Join(l.ClassPath("A"), d), 0755); err != nil {
			t.Fatal(err)
		}
	}

	tiers, err := l.ListTiers("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(tiers) != 3 || tiers[0] != 128 || tiers[1] != 64 || tiers[2] != 32 {
		t.Errorf("Expected [128 64 32], got %v", tiers)
	}
}
