package runlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// The run log is the pipeline's plain-text audit trail, kept separate from the
// structured service logs so operators and the scheduler can tail it directly.
// Every line is `<RFC3339 timestamp> - <LEVEL> - <message>`.

const (
	CurrentFileName = "current_log.txt"
	ArchiveFileName = "archive_log.txt"

	// DefaultRetention is the age at which a line moves to the archive.
	// A line exactly this old is rotated; anything younger stays.
	DefaultRetention = 7 * 24 * time.Hour

	timeLayout = time.RFC3339
	separator  = " - "
)

// Level is the severity written into a run log line.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Options configures a run log.
type Options struct {
	Dir       string
	Retention time.Duration
	Now       func() time.Time
}

// RotateResult summarizes one rotation pass.
type RotateResult struct {
	Rotated   int
	Kept      int
	Malformed int
}

// Log appends lines to the current log file. It is owned by a single run and
// is not safe for concurrent use.
type Log struct {
	currentPath string
	archivePath string
	retention   time.Duration
	now         func() time.Time

	file *os.File

	// Rotation holds the result of the rotation pass performed by Open.
	Rotation RotateResult
}

// Open rotates aged lines into the archive, then opens the current log file
// for appending.
func Open(opts Options) (*Log, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("run log dir is required")
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", opts.Dir, err)
	}

	l := &Log{
		currentPath: filepath.Join(opts.Dir, CurrentFileName),
		archivePath: filepath.Join(opts.Dir, ArchiveFileName),
		retention:   retention,
		now:         now,
	}

	result, err := Rotate(opts.Dir, now(), retention)
	if err != nil {
		return nil, err
	}
	l.Rotation = result

	file, err := os.OpenFile(l.currentPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %q: %w", l.currentPath, err)
	}
	l.file = file
	return l, nil
}

// Log appends a single line at the given level.
func (l *Log) Log(level Level, msg string) error {
	if l == nil || l.file == nil {
		return fmt.Errorf("run log is not open")
	}
	line := l.now().UTC().Format(timeLayout) + separator + string(level) + separator + msg + "\n"
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("append run log line: %w", err)
	}
	return nil
}

// Info appends an INFO line.
func (l *Log) Info(msg string) error { return l.Log(LevelInfo, msg) }

// Warning appends a WARNING line.
func (l *Log) Warning(msg string) error { return l.Log(LevelWarning, msg) }

// Error appends an ERROR line.
func (l *Log) Error(msg string) error { return l.Log(LevelError, msg) }

// Infof appends a formatted INFO line.
func (l *Log) Infof(format string, args ...any) error {
	return l.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Close flushes and closes the current log file.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Rotate moves every line in dir/current_log.txt whose timestamp is at least
// retention old into dir/archive_log.txt, preserving order. Lines without a
// parseable timestamp prefix are left in place. Running Rotate twice in a row
// is a no-op the second time.
func Rotate(dir string, now time.Time, retention time.Duration) (RotateResult, error) {
	var result RotateResult
	if retention <= 0 {
		retention = DefaultRetention
	}

	currentPath := filepath.Join(dir, CurrentFileName)
	archivePath := filepath.Join(dir, ArchiveFileName)

	file, err := os.Open(currentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("open %q: %w", currentPath, err)
	}

	var rotated, kept []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		ts, ok := ParseLineTimestamp(line)
		switch {
		case !ok:
			result.Malformed++
			kept = append(kept, line)
		case now.Sub(ts) >= retention:
			result.Rotated++
			rotated = append(rotated, line)
		default:
			result.Kept++
			kept = append(kept, line)
		}
	}
	scanErr := scanner.Err()
	if closeErr := file.Close(); err == nil && closeErr != nil {
		return result, fmt.Errorf("close %q: %w", currentPath, closeErr)
	}
	if scanErr != nil {
		return result, fmt.Errorf("scan %q: %w", currentPath, scanErr)
	}

	if result.Rotated == 0 {
		return result, nil
	}

	archive, err := os.OpenFile(archivePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return result, fmt.Errorf("open archive %q: %w", archivePath, err)
	}
	for _, line := range rotated {
		if _, err := archive.WriteString(line + "\n"); err != nil {
			_ = archive.Close()
			return result, fmt.Errorf("append archive line: %w", err)
		}
	}
	if err := archive.Close(); err != nil {
		return result, fmt.Errorf("close archive: %w", err)
	}

	tmpPath := currentPath + ".tmp"
	var buf strings.Builder
	for _, line := range kept {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if err := os.WriteFile(tmpPath, []byte(buf.String()), 0o644); err != nil {
		return result, fmt.Errorf("write %q: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, currentPath); err != nil {
		return result, fmt.Errorf("replace %q: %w", currentPath, err)
	}
	return result, nil
}

// ParseLineTimestamp extracts the timestamp prefix from a run log line.
func ParseLineTimestamp(line string) (time.Time, bool) {
	idx := strings.Index(line, separator)
	if idx < 0 {
		return time.Time{}, false
	}
	ts, err := time.Parse(timeLayout, line[:idx])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
