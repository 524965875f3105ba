package orgmode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/util"
)

var (
	headlineRegex = regexp.MustCompile(`^(\*+)\s+(TODO|NEXT|DONE|CANCELLED)\s+(?:\[#([A-Z])\]\s*)?(.*?)(?:\s+(:[\w@:]+:))?\s*$`)
	effortRegex   = regexp.MustCompile(`(?i)^:effort:\s+(.+)$`)
)

// Entry is one actionable Org headline.
type Entry struct {
	Keyword     string
	Priority    string
	Description string
	Tags        []string
	Effort      string
}

// Open reports whether the entry still needs doing.
func (e Entry) Open() bool {
	return e.Keyword == "TODO" || e.Keyword == "NEXT"
}

// Parse returns the TODO-style headlines of r in file order, with their
// :Effort: property when one is present.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current *Entry

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			if current != nil {
				entries = append(entries, *current)
				current = nil
			}
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &Entry{
				Keyword:     matches[2],
				Priority:    matches[3],
				Description: strings.TrimSpace(matches[4]),
			}
			if matches[5] != "" {
				current.Tags = strings.Split(strings.Trim(matches[5], ":"), ":")
			}
			continue
		}

		if current != nil {
			if m := effortRegex.FindStringSubmatch(line); m != nil {
				current.Effort = strings.TrimSpace(m[1])
			}
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FilterTasks keeps entries carrying tag.
func FilterTasks(entries []Entry, tag string) []Entry {
	var filtered []Entry
	for _, e := range entries {
		for _, t := range e.Tags {
			if t == tag {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}

// Source reads open headlines from a list of Org files.
type Source struct {
	Files []string
}

func NewSource(files []string) *Source {
	return &Source{Files: files}
}

func (s *Source) Name() string { return "orgmode" }

// Tasks returns open headlines across every file, files in configured order.
func (s *Source) Tasks(_ context.Context) ([]model.Task, error) {
	var out []model.Task
	for _, path := range s.Files {
		entries, err := parseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.Open() || e.Description == "" {
				continue
			}
			effort, err := util.ParseEffort(e.Effort)
			if err != nil {
				log.Printf("Warning: ignoring effort of %q in %s: %v", e.Description, path, err)
				effort = 0
			}
			out = append(out, model.Task{Description: e.Description, Estimate: effort, Source: "orgmode"})
		}
	}
	return out, nil
}

func parseFile(filePath string) ([]Entry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}
