// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base defines the logging interface shared by the simddb packages.
package base

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

var _ Logger = DefaultLogger{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// NoopLogger discards Infof messages. Fatalf still terminates the process.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// Infof implements the Logger.Infof interface.
func (NoopLogger) Infof(format string, args ...interface{}) {}

// Fatalf implements the Logger.Fatalf interface.
func (NoopLogger) Fatalf(format string, args ...interface{}) {
	DefaultLogger{}.Fatalf(format, args...)
}

// InMemLogger is a logger that records Infof messages, for use in tests.
type InMemLogger struct {
	buf []string
}

var _ Logger = (*InMemLogger)(nil)

// Infof implements the Logger.Infof interface.
func (l *InMemLogger) Infof(format string, args ...interface{}) {
	l.buf = append(l.buf, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (l *InMemLogger) Fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// Lines returns the messages logged so far.
func (l *InMemLogger) Lines() []string {
	return l.buf
}
