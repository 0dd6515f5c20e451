package utils

import (
	"fmt"

	"go.uber.org/zap"
)

// NewSugaredLogger creates a named sugared logger based on the verbose flag.
// If verbose is true, it creates a development logger (debug level, console
// encoding), otherwise a production logger (info level, JSON encoding).
func NewSugaredLogger(name string, verbose bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create development logger: %w", err)
		}
	} else {
		l, err = zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to create production logger: %w", err)
		}
	}
	if name != "" {
		l = l.Named(name)
	}
	return l.Sugar(), nil
}
