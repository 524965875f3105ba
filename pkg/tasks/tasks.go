package tasks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

const (
	FileName          = "tasks.txt"
	CompletedFileName = "completed_tasks.txt"
)

var ErrEmptyTask = errors.New("task description is empty")

// Source yields the tasks to plan, in priority order.
type Source interface {
	Name() string
	Tasks(ctx context.Context) ([]model.Task, error)
}

// List is the plain-text task list: one description per line. Lines are
// kept exactly as written apart from surrounding whitespace.
type List struct {
	Path          string
	CompletedPath string

	mu sync.Mutex
}

func NewList(dir string) *List {
	return &List{
		Path:          filepath.Join(dir, FileName),
		CompletedPath: filepath.Join(dir, CompletedFileName),
	}
}

func (l *List) Name() string { return "file" }

func (l *List) Tasks(_ context.Context) ([]model.Task, error) {
	descs, err := l.Load()
	if err != nil {
		return nil, err
	}
	out := model.FromDescriptions(descs)
	for i := range out {
		out[i].Source = l.Name()
	}
	return out, nil
}

// Load returns the pending descriptions in file order. A missing file is an
// empty list.
func (l *List) Load() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readLines(l.Path)
}

// Add appends desc to the list.
func (l *List) Add(desc string) error {
	desc = clean(desc)
	if desc == "" {
		return ErrEmptyTask
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return appendLine(l.Path, desc)
}

// Complete removes every occurrence of desc from the list and records it in
// the completed log. It reports whether desc was pending.
func (l *List) Complete(desc string) (bool, error) {
	desc = clean(desc)
	if desc == "" {
		return false, ErrEmptyTask
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	pending, err := readLines(l.Path)
	if err != nil {
		return false, err
	}
	remaining := pending[:0]
	found := false
	for _, p := range pending {
		if p == desc {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	if err := appendLine(l.CompletedPath, desc); err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return true, writeLines(l.Path, remaining)
}

// Completed returns the completed log in order.
func (l *List) Completed() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readLines(l.CompletedPath)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	reader := bufio.NewReader(f)
	for {
		raw, err := reader.ReadString('\n')
		if line := clean(raw); line != "" {
			out = append(out, line)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLines(path string, lines []string) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
