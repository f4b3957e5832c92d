// Package domelog is the thin structured-logging façade the dome core
// calls through: Info/Warn/Error(tag, message, fields...). It exists so
// the core never imports zap directly, matching how the rest of this
// codebase keeps its services decoupled from a concrete logging backend.
package domelog

import "go.uber.org/zap"

// Sink is the logging façade injected into the supervisor at
// construction time.
type Sink struct {
	l *zap.SugaredLogger
}

// NewProduction builds a Sink backed by zap's production JSON encoder.
func NewProduction() (*Sink, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Sink{l: l.Sugar()}, nil
}

// NewNop builds a Sink that discards everything, for tests.
func NewNop() *Sink { return &Sink{l: zap.NewNop().Sugar()} }

func (s *Sink) Info(tag, msg string, kv ...any) {
	s.l.Infow(msg, append([]any{"tag", tag}, kv...)...)
}

func (s *Sink) Warn(tag, msg string, kv ...any) {
	s.l.Warnw(msg, append([]any{"tag", tag}, kv...)...)
}

func (s *Sink) Error(tag, msg string, kv ...any) {
	s.l.Errorw(msg, append([]any{"tag", tag}, kv...)...)
}

// Sync flushes any buffered log entries.
func (s *Sink) Sync() error { return s.l.Sync() }
