// Package dataset describes the on-disk layout of the gesture sample tree.
//
//	<root>/<class>/BMP/<name>   display-format samples
//	<root>/<class>/PGM/<name>   processing-format samples
//	<root>/<class>/<S>/<name>   normalized S×S canvases
//
// File names are the join key between trees. Dot-prefixed entries and
// sub-directories are never dataset members.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andresmejia3/gestureprep/internal/types"
)

const (
	DefaultDisplayDir = "BMP"
	DefaultProcessDir = "PGM"
)

// DefaultClasses returns the gesture labels in their canonical order:
// 0-9, A-Z, Z0-Z3, bak0-bak9.
func DefaultClasses() []string {
	classes := make([]string, 0, 50)
	for c := '0'; c <= '9'; c++ {
		classes = append(classes, string(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		classes = append(classes, string(c))
	}
	for i := 0; i <= 3; i++ {
		classes = append(classes, "Z"+strconv.Itoa(i))
	}
	for i := 0; i <= 9; i++ {
		classes = append(classes, "bak"+strconv.Itoa(i))
	}
	return classes
}

// DefaultTiers returns the canvas sizes, largest first.
func DefaultTiers() []int {
	return []int{128, 64, 32}
}

// Layout resolves class and tree directories under an explicit root.
type Layout struct {
	Root       string
	DisplayDir string
	ProcessDir string
}

// NewLayout returns a Layout with the default tree names.
func NewLayout(root string) Layout {
	return Layout{Root: root, DisplayDir: DefaultDisplayDir, ProcessDir: DefaultProcessDir}
}

func (l Layout) ClassPath(class string) string {
	return filepath.Join(l.Root, class)
}

func (l Layout) DisplayPath(class string) string {
	return filepath.Join(l.Root, class, l.DisplayDir)
}

func (l Layout) ProcessPath(class string) string {
	return filepath.Join(l.Root, class, l.ProcessDir)
}

func (l Layout) TierPath(class string, tier int) string {
	return filepath.Join(l.Root, class, strconv.Itoa(tier))
}

// Validate checks that the tree names are usable and the root exists.
func (l Layout) Validate() error {
	if l.Root == "" {
		return fmt.Errorf("dataset root is not set")
	}
	for _, name := range []string{l.DisplayDir, l.ProcessDir} {
		if name == "" || strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
			return fmt.Errorf("invalid tree directory name %q", name)
		}
	}
	if l.DisplayDir == l.ProcessDir {
		return fmt.Errorf("display and processing trees must differ (both %q)", l.DisplayDir)
	}
	return RequireDir(l.Root)
}

// RequireDir returns a *types.MissingDirectoryError unless path is an
// existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &types.MissingDirectoryError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &types.MissingDirectoryError{Path: path, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

// IsMember reports whether an entry name is part of the dataset.
func IsMember(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".")
}

// ValidateClass rejects class names that would not resolve to a single
// directory directly under the root.
func ValidateClass(class string) error {
	if !IsMember(class) || strings.ContainsAny(class, `/\`) || strings.ContainsRune(class, filepath.Separator) {
		return fmt.Errorf("invalid class name %q", class)
	}
	return nil
}

// ValidateClasses applies ValidateClass to every name.
func ValidateClasses(classes []string) error {
	for _, class := range classes {
		if err := ValidateClass(class); err != nil {
			return err
		}
	}
	return nil
}

// ListNames returns the sorted member file names of dir.
func ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.MissingDirectoryError{Path: dir, Err: err}
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !IsMember(e.Name()) || e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ListTiers returns the tier directories present under a class, largest first.
func (l Layout) ListTiers(class string) ([]int, error) {
	entries, err := os.ReadDir(l.ClassPath(class))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.MissingDirectoryError{Path: l.ClassPath(class), Err: err}
		}
		return nil, err
	}
	var tiers []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(e.Name()); err == nil && n > 0 {
			tiers = append(tiers, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiers)))
	return tiers, nil
}
