// Package colors hands out stable terminal colors to recurring meeting
// labels, recycling the least recently seen slot once the palette is full.
package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const FileName = "meeting_colors.json"

// Palette follows Google Calendar's event colors 1 to 11.
var Palette = []lipgloss.Color{
	"#7986cb", // Lavender
	"#33b679", // Sage
	"#8e24aa", // Grape
	"#e67c73", // Flamingo
	"#f6bf26", // Banana
	"#f4511e", // Tangerine
	"#039be5", // Peacock
	"#616161", // Graphite
	"#3f51b5", // Blueberry
	"#0b8043", // Basil
	"#d50000", // Tomato
}

type LabelState struct {
	ColorID  string    `json:"color_id"`
	LastSeen time.Time `json:"last_seen"`
}

type ColorCache struct {
	Path   string
	Labels map[string]*LabelState `json:"labels"`
	mu     sync.Mutex
	dirty  bool
}

func NewColorCache(path string) (*ColorCache, error) {
	cache := &ColorCache{
		Path:   path,
		Labels: make(map[string]*LabelState),
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&c.Labels); err != nil {
		return err
	}
	if c.Labels == nil {
		c.Labels = make(map[string]*LabelState)
	}
	return nil
}

func (c *ColorCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Labels)
	if err == nil {
		c.dirty = false
	}
	return err
}

// Color returns the palette color for label.
func (c *ColorCache) Color(label string, now time.Time) lipgloss.Color {
	id, _ := strconv.Atoi(c.ColorID(label, now))
	if id < 1 || id > len(Palette) {
		id = 1
	}
	return Palette[id-1]
}

// ColorID returns the color slot ("1" to "11") for label, assigning one on
// first sight and evicting the least recently seen label when all are taken.
func (c *ColorCache) ColorID(label string, now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, exists := c.Labels[label]; exists {
		state.LastSeen = now
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(label, now)
}

func (c *ColorCache) assignColor(label string, now time.Time) string {
	used := make(map[string]bool)
	for _, s := range c.Labels {
		used[s.ColorID] = true
	}

	for i := 1; i <= len(Palette); i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Labels[label] = &LabelState{ColorID: id, LastSeen: now}
			c.dirty = true
			return id
		}
	}

	var oldestLabel string
	var oldestTime time.Time
	first := true
	for l, s := range c.Labels {
		if first || s.LastSeen.Before(oldestTime) {
			oldestTime = s.LastSeen
			oldestLabel = l
			first = false
		}
	}

	recycled := c.Labels[oldestLabel].ColorID
	delete(c.Labels, oldestLabel)
	c.Labels[label] = &LabelState{ColorID: recycled, LastSeen: now}
	c.dirty = true
	return recycled
}
