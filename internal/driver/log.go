package driver

import (
	"log/slog"

	"github.com/gogpu/exrdisplay/internal/diag"
)

// sessionLogger derives a per-session logger from the shared diagnostic
// logger, tagging every record with the driver name and output file so
// concurrent sessions' log lines (should a future host ever open more
// than one) stay attributable to the session that produced them.
func sessionLogger(driverName, fileName string) *slog.Logger {
	return diag.Logger().With("driver", driverName, "file", fileName)
}
