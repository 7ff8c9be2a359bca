package pager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionOptions(rows int) SessionOptions {
	return SessionOptions{Navigator: testOptions(rows), CacheBlocks: 2}
}

// stdinPipe returns a read end that yields content and then EOF
func stdinPipe(t *testing.T, content string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	go func() {
		w.WriteString(content)
		w.Close()
	}()
	return r
}

func TestSessionSkipsUnusableSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	empty := filepath.Join(dir, "empty.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("first\n"), 0o644))
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.NoError(t, os.WriteFile(b, []byte("second\n"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	s := NewSession([]string{missing, a, empty, dir, b}, sessionOptions(3))
	defer s.Close()

	require.NoError(t, s.Start())
	assert.Equal(t, a, s.Name())
	nav, err := s.Navigator()
	require.NoError(t, err)
	assert.Equal(t, "first", topText(t, nav))

	require.NoError(t, s.Next(1))
	assert.Equal(t, b, s.Name())
	assert.Equal(t, 4, s.Index())

	err = s.Next(1)
	assert.ErrorIs(t, err, ErrNoNextFile)
	assert.Equal(t, b, s.Name(), "a failed move keeps the current file")

	require.NoError(t, s.Prev(1))
	assert.Equal(t, a, s.Name())

	err = s.Prev(1)
	assert.ErrorIs(t, err, ErrNoPrevFile)
	assert.Equal(t, "No previous file", MessageFor(err))
}

func TestSessionOpenErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	s := NewSession([]string{empty, dir}, sessionOptions(3))
	assert.ErrorIs(t, s.Open(0), ErrEmptySource)
	assert.ErrorIs(t, s.Open(1), ErrNotAFile)
	assert.Error(t, s.Open(5))

	err := s.Start()
	assert.ErrorIs(t, err, ErrNoNextFile)
	assert.ErrorIs(t, err, ErrNotAFile)

	_, err = s.Navigator()
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Empty(t, s.Status(true))
}

func TestSessionStdinOnlyOnce(t *testing.T) {
	opts := sessionOptions(3)
	opts.Stdin = stdinPipe(t, "x\ny\n")

	s := NewSession(nil, opts)
	defer s.Close()
	assert.Equal(t, []string{StdinName}, s.Files())

	require.NoError(t, s.Start())
	assert.Equal(t, "(standard input)", s.Name())
	nav, err := s.Navigator()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, plain(nav))
	assert.False(t, nav.Cache().Seekable())

	assert.ErrorIs(t, s.Open(0), ErrStdinUsed)
}

func TestSessionSecondStdinIsSkipped(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("file\n"), 0o644))

	opts := sessionOptions(3)
	opts.Stdin = stdinPipe(t, "piped\n")
	s := NewSession([]string{StdinName, a, StdinName}, opts)
	defer s.Close()

	require.NoError(t, s.Start())
	require.NoError(t, s.Next(1))
	assert.Equal(t, a, s.Name())

	err := s.Next(1)
	assert.ErrorIs(t, err, ErrNoNextFile)
	assert.ErrorIs(t, err, ErrStdinUsed)

	err = s.Prev(1)
	assert.ErrorIs(t, err, ErrStdinUsed)
	assert.Equal(t, a, s.Name())
}

func TestSessionSuspendRestoresPosition(t *testing.T) {
	path := writeFile(t, "long.txt", numberedLines(100))
	s := NewSession([]string{path}, sessionOptions(5))
	defer s.Close()
	require.NoError(t, s.Start())

	nav, err := s.Navigator()
	require.NoError(t, err)
	require.NoError(t, nav.GotoLine(40))
	require.NoError(t, nav.SetMark('a'))

	s.Suspend()
	_, err = s.Navigator()
	assert.ErrorIs(t, err, ErrNoFile)

	require.NoError(t, s.Resume())
	nav, err = s.Navigator()
	require.NoError(t, err)
	assert.Equal(t, "line 40", topText(t, nav))

	_, err = nav.Marks().Get('a')
	assert.ErrorIs(t, err, ErrMarkNotSet, "marks are reset when a file opens")

	// Only the next open restores.
	require.NoError(t, s.Open(0))
	nav, err = s.Navigator()
	require.NoError(t, err)
	assert.Equal(t, "line 1", topText(t, nav))
}

func TestSessionSuspendKeepsPipeOpen(t *testing.T) {
	opts := sessionOptions(2)
	opts.Stdin = stdinPipe(t, numberedLines(10))
	s := NewSession(nil, opts)
	defer s.Close()
	require.NoError(t, s.Start())

	nav, err := s.Navigator()
	require.NoError(t, err)
	require.NoError(t, nav.ScrollForward(3))

	s.Suspend()
	require.NoError(t, s.Resume())
	nav, err = s.Navigator()
	require.NoError(t, err)
	assert.Equal(t, "line 4", topText(t, nav))
}

func TestSessionSearchSurvivesFileChange(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one\ntarget\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x\ny\ntarget\n"), 0o644))

	s := NewSession([]string{a, b}, sessionOptions(1))
	defer s.Close()
	require.NoError(t, s.Start())

	nav, _ := s.Navigator()
	require.NoError(t, nav.Search(Forward, "target", 1, false))
	require.NoError(t, s.Next(1))

	nav, _ = s.Navigator()
	require.NoError(t, nav.RepeatSearch(false, 1))
	assert.Equal(t, "target", topText(t, nav))
}

func TestSessionSqueezeAppliesToLaterFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("a\n\n\nz\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b\n\n\n\nz\n"), 0o644))

	s := NewSession([]string{a, b}, sessionOptions(5))
	defer s.Close()
	require.NoError(t, s.Start())
	require.NoError(t, s.SetSqueeze(true))

	nav, _ := s.Navigator()
	assert.Equal(t, []string{"a", "", "z"}, plain(nav))

	require.NoError(t, s.Next(1))
	nav, _ = s.Navigator()
	assert.Equal(t, []string{"b", "", "z"}, plain(nav))
}

func TestSessionStatus(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte(numberedLines(20)), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b\n"), 0o644))

	s := NewSession([]string{a, b}, sessionOptions(5))
	defer s.Close()
	require.NoError(t, s.Start())

	short := s.Status(false)
	assert.True(t, strings.HasPrefix(short, a))
	assert.NotContains(t, short, "(END)")
	assert.Contains(t, short, "%")

	verbose := s.Status(true)
	assert.Contains(t, verbose, "(file 1 of 2)")
	assert.Contains(t, verbose, "byte ")

	nav, _ := s.Navigator()
	require.NoError(t, nav.GotoEOF())
	assert.Contains(t, s.Status(false), "(END)")
	assert.Contains(t, s.Status(true), "- Next: "+b)
}
