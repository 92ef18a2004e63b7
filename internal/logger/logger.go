package logger

import (
	"go.uber.org/zap"
)

// New builds the service logger. Development gets a human-readable
// console logger; everything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewNamed builds the service logger with a service name attached to
// every entry.
func NewNamed(env, service string) (*zap.Logger, error) {
	l, err := New(env)
	if err != nil {
		return nil, err
	}
	return l.Named(service), nil
}
