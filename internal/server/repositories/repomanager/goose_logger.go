package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseLogger sends goose progress lines to the structured logger.
type gooseLogger struct {
	log logging.Logger
}

func newGooseLogger(l logging.Logger) goose.Logger {
	if l == nil {
		return goose.NopLogger()
	}
	return &gooseLogger{log: l.With("module", "migrations")}
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf does not exit; goose returns the error to RunMigrations as well.
func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}
