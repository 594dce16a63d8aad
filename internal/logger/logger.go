package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init builds the process logger for env and installs it as zap's global logger.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch env {
	case "development", "":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l.With(zap.String("env", env)))

	return nil
}
