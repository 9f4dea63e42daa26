package blocklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator creates the id of a new block of the given type.
type IDGenerator func(blockType string) string

// NewIDGenerator returns the default generator, producing "type-<unixmillis>-<random>".
// The random suffix keeps ids unique when several blocks are created in the same millisecond
// (templates, duplicates).
func NewIDGenerator(now func() time.Time) IDGenerator {
	if now == nil {
		now = time.Now
	}
	return func(blockType string) string {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		return fmt.Sprintf("%s-%d-%s", blockType, now().UnixMilli(), suffix)
	}
}
