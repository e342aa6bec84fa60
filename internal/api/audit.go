package api

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// AuditLog appends one line per recorded action to a writer. Writes are
// serialized so concurrent handlers never interleave lines.
type AuditLog struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func NewAuditLog(out io.Writer) *AuditLog {
	return &AuditLog{out: out, now: time.Now}
}

// Record writes a timestamped line attributed to the acting user.
func (log *AuditLog) Record(userID uint, format string, args ...any) {
	if log == nil || log.out == nil {
		return
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	fmt.Fprintf(log.out, "%s user=%d %s\n", log.now().UTC().Format(time.RFC3339), userID, fmt.Sprintf(format, args...))
}
