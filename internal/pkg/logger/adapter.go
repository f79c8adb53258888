package logger

import "wallet_report/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level logger,
// so services can take the port instead of importing this package.
type slogAdapter struct{}

// NewSlogAdapter creates a new slogAdapter.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, args...)
}

// Nop discards everything. Useful in tests.
type Nop struct{}

func (Nop) Info(string, ...any)  {}
func (Nop) Debug(string, ...any) {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
