package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stderr is where error boxes are printed.
var Stderr io.Writer = os.Stderr

// exit is swapped out in tests.
var exit = os.Exit

const rule = "---------------------------------------------------------"

// ShowError prints a formatted error box without exiting.
func ShowError(context string, err error) {
	fmt.Fprintf(Stderr, "\n%s\n", rule)
	fmt.Fprintf(Stderr, "🚨 GESTUREPREP ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(Stderr, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(Stderr, "%s\n", rule)
}

// Die is the unified exit strategy: it prints the error box and exits 1.
func Die(context string, err error) {
	ShowError(context, err)
	exit(1)
}

// Banner prints a section header in the same style as the error box.
func Banner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}

// Plural returns "n word", pluralizing word with "s" or "es" when n != 1.
func Plural(n int, word string) string {
	switch {
	case n == 1:
		return fmt.Sprintf("%d %s", n, word)
	case strings.HasSuffix(word, "s"):
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n || n < 4 {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
