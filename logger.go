package rwebserve

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strconv"
	"sync"
	"text/template"
	"time"
)

// Logger logs the operational events of a server: connection setup
// failures, parse errors, I/O errors, and bind/listen/accept outcomes. The
// core never writes to stdout/stderr directly, it always goes through a
// Logger.
type Logger struct {
	appName string

	template   *template.Template
	bufferPool *sync.Pool
	mutex      *sync.Mutex
	levels     []string

	// Output is where formatted log lines are written. Defaults to
	// os.Stdout.
	Output io.Writer

	// Enabled turns logging on or off. Defaults to true.
	Enabled bool

	// Format is a text/template string evaluated against a record with
	// keys app_name, time_rfc3339, level, short_file, long_file, line.
	// If the executed template ends in '}' the message is folded into
	// it as a JSON field, otherwise it is appended as plain text.
	Format string
}

// DefaultLoggerFormat is the Format a new Logger is constructed with.
const DefaultLoggerFormat = `{"app_name":"{{.app_name}}","time":"{{.time_rfc3339}}",` +
	`"level":"{{.level}}","file":"{{.short_file}}","line":"{{.line}}"}`

// NewLogger returns a Logger identifying itself as appName in records.
func NewLogger(appName string) *Logger {
	return &Logger{
		appName: appName,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 256))
			},
		},
		mutex: &sync.Mutex{},
		levels: []string{
			"DEBUG",
			"INFO",
			"WARN",
			"ERROR",
			"FATAL",
		},
		Output:  os.Stdout,
		Enabled: true,
		Format:  DefaultLoggerFormat,
	}
}

type loggerLevel uint8

const (
	lvlDebug loggerLevel = iota
	lvlInfo
	lvlWarn
	lvlError
	lvlFatal
)

// Debug logs i at DEBUG level.
func (l *Logger) Debug(i ...interface{}) { l.log(lvlDebug, "", i...) }

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(lvlDebug, format, args...) }

// Info logs i at INFO level.
func (l *Logger) Info(i ...interface{}) { l.log(lvlInfo, "", i...) }

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(format string, args ...interface{}) { l.log(lvlInfo, format, args...) }

// Warn logs i at WARN level.
func (l *Logger) Warn(i ...interface{}) { l.log(lvlWarn, "", i...) }

// Warnf logs a formatted message at WARN level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(lvlWarn, format, args...) }

// Error logs i at ERROR level.
func (l *Logger) Error(i ...interface{}) { l.log(lvlError, "", i...) }

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(lvlError, format, args...) }

// Fatal logs i at FATAL level and terminates the process.
func (l *Logger) Fatal(i ...interface{}) {
	l.log(lvlFatal, "", i...)
	os.Exit(1)
}

func (l *Logger) log(lvl loggerLevel, format string, args ...interface{}) {
	if l == nil || !l.Enabled {
		return
	}
	if l.template == nil {
		l.template = template.Must(template.New("logger").Parse(l.Format))
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	buf := l.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		l.bufferPool.Put(buf)
	}()

	var message string
	if format == "" {
		message = fmt.Sprint(args...)
	} else {
		message = fmt.Sprintf(format, args...)
	}

	_, file, line, _ := runtime.Caller(2)
	data := map[string]interface{}{
		"app_name":     l.appName,
		"time_rfc3339": time.Now().Format(time.RFC3339),
		"level":        l.levels[lvl],
		"short_file":   path.Base(file),
		"long_file":    file,
		"line":         strconv.Itoa(line),
	}

	if err := l.template.Execute(buf, data); err != nil {
		return
	}

	s := buf.String()
	if n := len(s); n > 0 && s[n-1] == '}' {
		buf.Truncate(n - 1)
		buf.WriteString(`,"message":"`)
		buf.WriteString(message)
		buf.WriteString(`"}`)
	} else {
		buf.WriteByte(' ')
		buf.WriteString(message)
	}
	buf.WriteByte('\n')
	l.Output.Write(buf.Bytes())
}
