// Package logging routes leveled airway messages to a slog logger with a
// tint handler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const timeFormat = "15:04:05.000"

// Level is the severity requested by a log call.
type Level int

const (
	LevelLog Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = map[Level]string{
	LevelLog:   "log",
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelDebug: "debug",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "log"
}

// ParseLevel maps a level name to a Level. Unknown names fall back to
// LevelLog.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l
		}
	}
	return LevelLog
}

// SLog maps l to the slog level it is written at. LevelLog and anything
// unrecognised use slog.LevelInfo.
func (l Level) SLog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing info and above to w, or debug and above
// when verbose.
func New(w io.Writer, verbose bool) *slog.Logger {
	if verbose {
		return NewLevel(w, LevelDebug)
	}
	return NewLevel(w, LevelInfo)
}

// NewLevel builds a logger writing records at lowest or above to w. Colour is
// enabled only when w is a terminal.
func NewLevel(w io.Writer, lowest Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lowest.SLog(),
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(w),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
