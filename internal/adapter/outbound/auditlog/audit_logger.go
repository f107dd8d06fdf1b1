// Package auditlog writes data-mutation audit lines to the console and to
// date-partitioned, size-rotated files.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/config"
	"javasegment/internal/port/outbound"
)

// Defaults applied when the configuration leaves a limit unset.
const (
	DefaultMaxBytes       int64 = 1 << 20
	DefaultMaxDataEntries       = 50
)

const (
	unknownValue  = "unknown"
	unknownAction = "UNKNOWN"
	mappedV4      = "::ffff:"
	filePerm      = 0o644
	dirPerm       = 0o755
)

// FileAuditLogger implements outbound.AuditLogger. It never returns or panics on
// failure; problems are reported as warnings.
type FileAuditLogger struct {
	dir            string
	maxBytes       int64
	maxDataEntries int
	console        io.Writer
	now            func() time.Time
	mu             sync.Mutex
}

// Option customizes a FileAuditLogger.
type Option func(*FileAuditLogger)

// WithConsole sets the console writer. A nil writer disables console output.
func WithConsole(w io.Writer) Option {
	return func(l *FileAuditLogger) { l.console = w }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *FileAuditLogger) { l.now = now }
}

// NewFileAuditLogger creates an audit logger rooted at cfg.Dir.
func NewFileAuditLogger(cfg config.AuditConfig, opts ...Option) *FileAuditLogger {
	l := &FileAuditLogger{
		dir:            cfg.Dir,
		maxBytes:       cfg.MaxBytes,
		maxDataEntries: cfg.MaxDataEntries,
		now:            time.Now,
	}
	if l.dir == "" {
		l.dir = "logs"
	}
	if l.maxBytes <= 0 {
		l.maxBytes = DefaultMaxBytes
	}
	if l.maxDataEntries <= 0 {
		l.maxDataEntries = DefaultMaxDataEntries
	}
	if cfg.Console {
		l.console = os.Stdout
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMutation records one mutation.
func (l *FileAuditLogger) LogMutation(ctx context.Context, entry outbound.AuditEntry) {
	defer func() {
		if r := recover(); r != nil {
			slogger.Warn(ctx, "Failed to write audit log", slogger.Field("error", fmt.Sprint(r)))
		}
	}()

	now := l.now()
	line, err := l.FormatLine(now, entry)
	if err != nil {
		slogger.Warn(ctx, "Failed to format audit log line", slogger.Field("error", err.Error()))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.console != nil {
		if _, err := fmt.Fprintln(l.console, line); err != nil {
			slogger.Warn(ctx, "Failed to write audit log to console", slogger.Field("error", err.Error()))
		}
	}
	if err := l.appendLine(now, line); err != nil {
		slogger.Warn(ctx, "Failed to write audit log", slogger.Fields{
			"error": err.Error(),
			"dir":   l.dir,
		})
	}
}

// FormatLine renders entry as it is written to the console and files.
func (l *FileAuditLogger) FormatLine(now time.Time, entry outbound.AuditEntry) (string, error) {
	action := entry.Action
	if action == "" {
		action = unknownAction
	}
	table := entry.Table
	if table == "" {
		table = unknownValue
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NormalizeData(entry.Data, l.maxDataEntries)); err != nil {
		return "", fmt.Errorf("encode audit data: %w", err)
	}

	return fmt.Sprintf("[%s] [INFO] [SQL] ip=%s action=%s table=%s data=%s",
		now.Format(time.DateTime),
		NormalizeIP(entry.IP),
		action,
		table,
		strings.TrimRight(buf.String(), "\n"),
	), nil
}

// NormalizeIP keeps the first address of a forwarded list and strips the
// IPv4-mapped IPv6 prefix. Blank input becomes "unknown".
func NormalizeIP(ip string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(ip), ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return unknownValue
	}
	return strings.TrimPrefix(first, mappedV4)
}

// NormalizeData returns the audit payload as a list: slices are truncated to
// maxEntries with a trailing "...+N" marker, nil becomes an empty list and any
// other value is wrapped.
func NormalizeData(data any, maxEntries int) []any {
	if data == nil {
		return []any{}
	}
	if maxEntries < 0 {
		maxEntries = 0
	}

	v := reflect.ValueOf(data)
	if (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) || v.Type().Elem().Kind() == reflect.Uint8 {
		return []any{data}
	}
	if v.Kind() == reflect.Slice && v.IsNil() {
		return []any{}
	}

	n := v.Len()
	keep := min(n, maxEntries)
	out := make([]any, 0, keep+1)
	for i := 0; i < keep; i++ {
		out = append(out, v.Index(i).Interface())
	}
	if n > keep {
		out = append(out, "...+"+strconv.Itoa(n-keep))
	}
	return out
}

func (l *FileAuditLogger) appendLine(now time.Time, line string) error {
	path, err := l.resolveFilePath(now.Format("20060102"))
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append audit file: %w", err)
	}
	return f.Close()
}

// resolveFilePath picks {dir}/{stamp}/{stamp}_log_{batch}: the highest existing batch,
// or the next one once that file has reached maxBytes.
func (l *FileAuditLogger) resolveFilePath(stamp string) (string, error) {
	dirPath := filepath.Join(l.dir, stamp)
	if err := os.MkdirAll(dirPath, dirPerm); err != nil {
		return "", fmt.Errorf("create audit directory: %w", err)
	}

	batch := 1
	pattern := regexp.MustCompile(`^` + stamp + `_log_(\d+)$`)
	if entries, err := os.ReadDir(dirPath); err == nil {
		found := false
		for _, e := range entries {
			m := pattern.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			if n, convErr := strconv.Atoi(m[1]); convErr == nil && (!found || n > batch) {
				batch = n
				found = true
			}
		}
	}

	info, err := os.Stat(batchPath(dirPath, stamp, batch))
	switch {
	case err == nil && info.Size() >= l.maxBytes:
		batch++
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		slogger.WarnNoCtx("Failed to stat audit file", slogger.Field("error", err.Error()))
	}
	return batchPath(dirPath, stamp, batch), nil
}

func batchPath(dirPath, stamp string, batch int) string {
	return filepath.Join(dirPath, stamp+"_log_"+strconv.Itoa(batch))
}
