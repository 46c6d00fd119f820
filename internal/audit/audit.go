// Package audit maintains the bot's append-only audit trail. Lines are
// timestamped, appended to per-destination log files and mirrored to the
// console. There is no read or query surface; files are never rotated.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/khanghh/linkbot/params"
)

// Destination selects which log file a line is appended to.
type Destination int

const (
	DestMain Destination = iota
	DestAuth
	DestErr
)

var fileNames = map[Destination]string{
	DestMain: params.MainLogFile,
	DestAuth: params.AuthLogFile,
	DestErr:  params.ErrLogFile,
}

const timestampLayout = "2006-01-02T15:04:05.000000"

// Logger appends timestamped lines to the destination log files. Each line is
// written with a single write call under the mutex, so concurrent callers
// cannot interleave partial lines.
type Logger struct {
	dir    string
	mirror io.Writer // console mirror, nil to suppress

	mu    sync.Mutex
	files map[Destination]*os.File
}

func NewLogger(dir string, mirror io.Writer) *Logger {
	return &Logger{dir: dir, mirror: mirror}
}

// Open creates the logs directory if needed and opens every destination file
// for append. Must be called once before the event router starts.
func (l *Logger) Open() error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create logs directory %s: %w", l.dir, err)
	}
	files := make(map[Destination]*os.File, len(fileNames))
	for dest, name := range fileNames {
		file, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return fmt.Errorf("open log file %s: %w", name, err)
		}
		files[dest] = file
	}
	l.mu.Lock()
	l.files = files
	l.mu.Unlock()
	return nil
}

// Close closes all destination files. Record returns ErrNotOpen afterwards.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, file := range l.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}

// Record appends "<timestamp>: <message>" to the destination file and mirrors
// the line to the console. A write failure is returned to the caller; audit
// entries are never dropped silently and never retried.
func (l *Logger) Record(dest Destination, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	file, ok := l.files[dest]
	if !ok {
		return ErrNotOpen
	}
	now := time.Now().Format(timestampLayout)
	if l.mirror != nil {
		fmt.Fprintf(l.mirror, "%s (%s): %s\n", now, fileNames[dest], message)
	}
	if _, err := file.WriteString(fmt.Sprintf("%s: %s\n", now, message)); err != nil {
		return fmt.Errorf("append to %s: %w", fileNames[dest], err)
	}
	return nil
}
