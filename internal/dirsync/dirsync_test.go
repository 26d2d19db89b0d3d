package dirsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers questions from a fixed list and counts prompts.
type scripted struct {
	answers []Decision
	asked   int
}

func (s *scripted) Confirm(string) (Decision, error) {
	if s.asked >= len(s.answers) {
		return Abort, errors.New("script exhausted")
	}
	d := s.answers[s.asked]
	s.asked++
	return d, nil
}

func mkTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0644))
	}
	return dir
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	got, err := dataset.ListNames(dir)
	require.NoError(t, err)
	return got
}

func TestCompare(t *testing.T) {
	x := mkTree(t, "p.img", "q.img", ".DS_Store")
	y := mkTree(t, "q.img", "r.img", ".hidden")

	d, err := Compare(x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"p.img"}, d.OnlyA)
	assert.Equal(t, []string{"r.img"}, d.OnlyB)
	assert.Equal(t, 1, d.Common)
	assert.False(t, d.Empty())

	again, err := Compare(x, y)
	require.NoError(t, err)
	assert.Equal(t, d, again, "compare must be repeatable")

	assert.Equal(t, []string{"p.img", "q.img"}, names(t, x), "compare must not mutate")
}

func TestCompareMissingDirectory(t *testing.T) {
	x := mkTree(t, "a")
	missing := filepath.Join(t.TempDir(), "gone")

	for _, pair := range [][2]string{{x, missing}, {missing, x}} {
		_, err := Compare(pair[0], pair[1])
		var merr *types.MissingDirectoryError
		require.True(t, errors.As(err, &merr), "expected MissingDirectoryError, got %v", err)
		assert.Equal(t, missing, merr.Path)
	}
}

func TestSyncScenario(t *testing.T) {
	x := mkTree(t, "p.img", "q.img")
	y := mkTree(t, "q.img", "r.img")

	var seen []Deletion
	var reported *Diff
	s := &Synchronizer{
		Prompter: &scripted{answers: []Decision{Proceed}},
		OnDiff:   func(d *Diff) { reported = d },
		OnDelete: func(d Deletion) { seen = append(seen, d) },
	}

	res, err := s.Sync(context.Background(), x, y)
	require.NoError(t, err)
	require.NotNil(t, reported)
	assert.Equal(t, []string{"p.img"}, reported.OnlyA)
	assert.Equal(t, []string{"r.img"}, reported.OnlyB)

	assert.Equal(t, []string{"q.img"}, names(t, x))
	assert.Equal(t, []string{"q.img"}, names(t, y))
	assert.Empty(t, res.Failed)
	require.Len(t, res.Deleted, 2)
	assert.Equal(t, res.Deleted, seen)
	assert.Equal(t, Deletion{Side: SideA, Name: "p.img", Path: filepath.Join(reported.A, "p.img")}, res.Deleted[0])
	assert.Equal(t, Deletion{Side: SideB, Name: "r.img", Path: filepath.Join(reported.B, "r.img")}, res.Deleted[1])
	assert.True(t, filepath.IsAbs(res.Deleted[0].Path))

	// Second run is a fixed point: nothing to do and no prompt.
	p := &scripted{}
	s.Prompter = p
	seen = nil
	res, err = s.Sync(context.Background(), x, y)
	require.NoError(t, err)
	assert.True(t, res.NothingToDo)
	assert.Empty(t, res.Deleted)
	assert.Empty(t, seen)
	assert.Equal(t, 0, p.asked)
}

func TestSyncNeverDeletesIntersection(t *testing.T) {
	common := []string{"c1.pgm", "c2.pgm", "c3.pgm"}
	x := mkTree(t, append([]string{"x1.pgm", "x2.pgm"}, common...)...)
	y := mkTree(t, append([]string{"y1.pgm"}, common...)...)

	res, err := (&Synchronizer{Prompter: AlwaysProceed{}}).Sync(context.Background(), x, y)
	require.NoError(t, err)
	assert.Len(t, res.Deleted, 3)

	assert.Equal(t, common, names(t, x))
	assert.Equal(t, common, names(t, y))
}

func TestSyncDecisions(t *testing.T) {
	tests := []struct {
		name        string
		answers     []Decision
		wantDeleted bool
		wantAsked   int
	}{
		{name: "Proceed", answers: []Decision{Proceed}, wantDeleted: true, wantAsked: 1},
		{name: "Abort", answers: []Decision{Abort}, wantAsked: 1},
		{name: "Reprompt then proceed", answers: []Decision{Reprompt, Reprompt, Proceed}, wantDeleted: true, wantAsked: 3},
		{name: "Reprompt then abort", answers: []Decision{Reprompt, Abort}, wantAsked: 2},
		{name: "Prompt error aborts", answers: []Decision{Reprompt}, wantAsked: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := mkTree(t, "a", "b")
			y := mkTree(t, "b")
			p := &scripted{answers: tt.answers}

			res, err := (&Synchronizer{Prompter: p}).Sync(context.Background(), x, y)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAsked, p.asked)
			assert.Equal(t, !tt.wantDeleted, res.Aborted)

			if tt.wantDeleted {
				assert.Equal(t, []string{"b"}, names(t, x))
			} else {
				assert.Equal(t, []string{"a", "b"}, names(t, x))
				assert.Empty(t, res.Deleted)
			}
		})
	}
}

func TestSyncMissingDirectory(t *testing.T) {
	x := mkTree(t, "a")
	p := &scripted{answers: []Decision{Proceed}}

	_, err := (&Synchronizer{Prompter: p}).Sync(context.Background(), x, filepath.Join(x, "nope"))
	var merr *types.MissingDirectoryError
	assert.True(t, errors.As(err, &merr))
	assert.Equal(t, 0, p.asked)
	assert.Equal(t, []string{"a"}, names(t, x))
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}

	x := mkTree(t, "keep", "x-only")
	y := mkTree(t, "keep", "y-only")

	d, err := Compare(x, y)
	require.NoError(t, err)

	// Make A read-only so its deletion fails; B must still be cleaned.
	require.NoError(t, os.Chmod(x, 0555))
	t.Cleanup(func() { os.Chmod(x, 0755) })

	deleted, failed := d.Apply(nil, nil)
	require.Len(t, failed, 1)
	assert.Equal(t, filepath.Join(d.A, "x-only"), failed[0].Path)
	require.Len(t, deleted, 1)
	assert.Equal(t, SideB, deleted[0].Side)
	assert.Equal(t, []string{"keep"}, names(t, y))
}

func TestParseAnswer(t *testing.T) {
	tests := map[string]Decision{
		"y": Proceed, "Y": Proceed, "yes\n": Proceed,
		"n": Abort, "N": Abort, " no ": Abort,
		"": Reprompt, "maybe": Reprompt, "yy": Reprompt,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAnswer(in), "answer %q", in)
	}
}

func TestLinePrompter(t *testing.T) {
	var out strings.Builder
	p := NewLinePrompter(strings.NewReader("what\ny\n"), &out)

	d, err := p.Confirm("Synchronize?")
	require.NoError(t, err)
	assert.Equal(t, Reprompt, d)

	d, err = p.Confirm("Synchronize?")
	require.NoError(t, err)
	assert.Equal(t, Proceed, d)

	_, err = p.Confirm("Synchronize?")
	assert.Error(t, err, "EOF must end the conversation")
	assert.Equal(t, 3, strings.Count(out.String(), "Synchronize? (Y/N) "))
}

func TestLinePrompterLastLineWithoutNewline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("n"), &strings.Builder{})
	d, err := p.Confirm("Synchronize?")
	require.NoError(t, err)
	assert.Equal(t, Abort, d)
}

func TestSyncedWithLinePrompter(t *testing.T) {
	x := mkTree(t, "1.bmp", "2.bmp")
	y := mkTree(t, "2.bmp", "3.bmp")

	s := &Synchronizer{Prompter: NewLinePrompter(strings.NewReader("?\nY\n"), &strings.Builder{})}
	res, err := s.Sync(context.Background(), x, y)
	require.NoError(t, err)

	var got []string
	for _, d := range res.Deleted {
		got = append(got, d.Name)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"1.bmp", "3.bmp"}, got)
}
