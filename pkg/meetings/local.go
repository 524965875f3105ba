package meetings

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

// FileName is the local meetings file inside the data directory.
const FileName = "meetings.txt"

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ErrInvalidRecord is returned for meeting lines that cannot be parsed.
var ErrInvalidRecord = errors.New("invalid meeting record")

// LocalFile reads and appends "YYYY-MM-DD,HH:MM-HH:MM,label" records.
type LocalFile struct {
	Path string
	mu   sync.Mutex
}

func NewLocalFile(path string) *LocalFile {
	return &LocalFile{Path: path}
}

func (f *LocalFile) Name() string { return "local" }

// Fetch returns the records dated on day. Malformed lines are skipped;
// a missing file holds no meetings.
func (f *LocalFile) Fetch(_ context.Context, day time.Time) ([]model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	today := day.Format(dateLayout)
	var meetings []model.Meeting
	reader := bufio.NewReader(file)
	lineNo := 0
	for {
		raw, readErr := reader.ReadString('\n')
		if raw != "" {
			lineNo++
			if m, ok := f.parseLine(raw, today, lineNo, day.Location()); ok {
				meetings = append(meetings, m)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Printf("Warning: stopped reading %s at line %d: %v", f.Path, lineNo, readErr)
			break
		}
	}
	return meetings, nil
}

func (f *LocalFile) parseLine(raw, today string, lineNo int, loc *time.Location) (model.Meeting, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || !strings.HasPrefix(line, today+",") {
		return model.Meeting{}, false
	}
	m, err := ParseRecord(line, loc)
	if err != nil {
		log.Printf("Warning: skipping %s line %d: %v", f.Path, lineNo, err)
		return model.Meeting{}, false
	}
	m.Source = f.Name()
	return m, true
}

// Add appends a meeting record to the file.
func (f *LocalFile) Add(m model.Meeting) error {
	if !m.Valid() {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRecord,
			m.Start.Format(clockLayout), m.End.Format(clockLayout))
	}
	if strings.ContainsAny(m.Label, "\r\n") {
		return fmt.Errorf("%w: label must be a single line", ErrInvalidRecord)
	}
	if m.Start.Format(dateLayout) != m.End.Format(dateLayout) {
		return fmt.Errorf("%w: meeting must start and end on the same day", ErrInvalidRecord)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create meetings directory: %w", err)
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open meetings file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, FormatRecord(m)); err != nil {
		return err
	}
	return file.Sync()
}

// ParseRecord parses one "YYYY-MM-DD,HH:MM-HH:MM,label" line in loc.
// The label may itself contain commas.
func ParseRecord(line string, loc *time.Location) (model.Meeting, error) {
	parts := strings.SplitN(strings.TrimSpace(line), ",", 3)
	if len(parts) != 3 {
		return model.Meeting{}, fmt.Errorf("%w: expected date,HH:MM-HH:MM,label: %q", ErrInvalidRecord, line)
	}
	date, span, label := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])

	bounds := strings.Split(span, "-")
	if len(bounds) != 2 {
		return model.Meeting{}, fmt.Errorf("%w: bad time range %q", ErrInvalidRecord, span)
	}
	start, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+strings.TrimSpace(bounds[0]), loc)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	end, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+strings.TrimSpace(bounds[1]), loc)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	m := model.Meeting{Start: start, End: end, Label: label}
	if !m.Valid() {
		return model.Meeting{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRecord, bounds[0], bounds[1])
	}
	return m, nil
}

// FormatRecord is the inverse of ParseRecord.
func FormatRecord(m model.Meeting) string {
	return fmt.Sprintf("%s,%s-%s,%s",
		m.Start.Format(dateLayout), m.Start.Format(clockLayout), m.End.Format(clockLayout), m.Label)
}

// MigrateLegacy moves a meetings file from its old location into the data
// directory when only the old one exists. It reports whether it moved anything.
func MigrateLegacy(oldPath, newPath string) (bool, error) {
	if _, err := os.Stat(oldPath); err != nil {
		return false, nil
	}
	if _, err := os.Stat(newPath); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0700); err != nil {
		return false, err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return false, fmt.Errorf("failed to migrate %s: %w", oldPath, err)
	}
	return true, nil
}
