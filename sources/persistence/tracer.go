package persistence

import (
	"fmt"

	"fitcoach/sources/tracing"
)

type gormtracer struct {
	logger *tracing.Logger
}

func (w *gormtracer) Printf(format string, args ...interface{}) {
	w.logger.W("gorm", tracing.SqlQuery, fmt.Sprintf(format, args...))
}
