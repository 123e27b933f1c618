// Package matrixplan converts a compliance-matrix slide deck into a
// spreadsheet test plan.
package matrixplan

import "github.com/rs/zerolog"

// Options configures conversion behavior.
type Options struct {
	// Logger receives debug events about detected sections and tables.
	// If nil, nothing is logged.
	Logger *zerolog.Logger
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
