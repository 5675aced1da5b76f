/*
File: formatter.go
Description: Console log formatter. Colors levels, tags harness phases
with a short prefix and keeps structured fields on one line.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ConsoleFormatter renders entries as a single colored line with a phase
// prefix derived from the message.
type ConsoleFormatter struct {
	Timestamp bool
	Colors    bool
}

// Format implements logrus.Formatter.
func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var out strings.Builder

	if f.Timestamp {
		ts := entry.Time.Format("2006-01-02 15:04:05.000")
		f.colored(&out, 36, ts)
		out.WriteByte(' ')
	}

	level := strings.ToUpper(entry.Level.String())
	f.colored(&out, levelColor(entry.Level), level)
	out.WriteByte(' ')

	if prefix := phasePrefix(entry.Message); prefix != "" {
		f.colored(&out, 35, "["+prefix+"]")
		out.WriteByte(' ')
	}

	out.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		out.WriteByte(' ')
		out.WriteString(f.formatFields(entry.Data))
	}

	out.WriteByte('\n')
	return []byte(out.String()), nil
}

func (f *ConsoleFormatter) colored(out *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(out, "\033[%dm%s\033[0m", color, s)
	} else {
		out.WriteString(s)
	}
}

func levelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel:
		return 37
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35
	}
	return 37
}

// phasePrefix maps well-known harness messages to a short tag so the
// console stream scans easily during long runs.
func phasePrefix(message string) string {
	switch {
	case strings.Contains(message, "Monkey invocation"):
		return "MONKEY"
	case strings.Contains(message, "Crash"), strings.Contains(message, "crash"):
		return "CRASH"
	case strings.Contains(message, "ANR"):
		return "ANR"
	case strings.Contains(message, "Memory"), strings.Contains(message, "memory"):
		return "MEM"
	case strings.Contains(message, "Stress worker"):
		return "STRESS"
	case strings.Contains(message, "report"), strings.Contains(message, "reports"):
		return "REPORT"
	case strings.Contains(message, "Session"), strings.Contains(message, "session"):
		return "SESSION"
	}
	return ""
}

func (f *ConsoleFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := formatValue(fields[k])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", k, v))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(parts, " ")
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > 60 {
			return v[:60] + "..."
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
