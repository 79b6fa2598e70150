package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = [...]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR"}

var levelColors = [...]string{DEBUG: "\033[36m", INFO: "\033[32m", WARN: "\033[33m", ERROR: "\033[31m"}

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps LOG_LEVEL values to a Level; unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes one line per message: time, level, [prefix], [file:line],
// the message, then key=value fields in key order. Loggers derived with
// WithPrefix or WithField share the writer and its lock.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithColors turns on ANSI colored level names.
func WithColors(enabled bool) Option {
	return func(l *Logger) { l.colorize = enabled }
}

func New(opts ...Option) *Logger {
	l := &Logger{mu: &sync.Mutex{}, out: os.Stdout, level: INFO}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New())
}

// SetDefault replaces the logger returned by Default and FromContext. Safe to
// call while other goroutines are logging.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

func Default() *Logger {
	return defaultLogger.Load()
}

func (l *Logger) derive(prefix string, extra map[string]any) *Logger {
	d := *l
	d.prefix = prefix
	if len(extra) > 0 {
		d.fields = make(map[string]any, len(l.fields)+len(extra))
		for k, v := range l.fields {
			d.fields[k] = v
		}
		for k, v := range extra {
			d.fields[k] = v
		}
	}
	return &d
}

// WithPrefix names the component, e.g. "syncer" or "profile_repo".
func (l *Logger) WithPrefix(prefix string) *Logger {
	return l.derive(prefix, nil)
}

func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.prefix, map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(l.prefix, fields)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(DEBUG, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(INFO, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(WARN, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(ERROR, msg, args...) }

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteByte(' ')
	if l.colorize {
		fmt.Fprintf(&sb, "%s%-5s\033[0m ", levelColors[level], level)
	} else {
		fmt.Fprintf(&sb, "%-5s ", level)
	}
	if l.prefix != "" {
		sb.WriteString("[" + l.prefix + "] ")
	}
	// 2: log <- Debug/Info/Warn/Error <- caller
	if _, file, line, ok := runtime.Caller(2); ok {
		fmt.Fprintf(&sb, "[%s:%d] ", file[strings.LastIndex(file, "/")+1:], line)
	}
	sb.WriteString(msg)
	writeFields(&sb, l.fields)
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}

// writeFields appends fields sorted by key. Values with spaces, quotes or
// '=' are quoted so a line always splits back into key=value pairs.
func writeFields(sb *strings.Builder, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if v == "" || strings.ContainsAny(v, " \t\n\"=") {
			v = strconv.Quote(v)
		}
		sb.WriteString(" " + k + "=" + v)
	}
}

type ctxKey struct{}

// FromContext returns the request scoped logger, or Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
