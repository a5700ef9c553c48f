package document

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// KeySource hands out block and span keys.
type KeySource interface {
	Next() string
}

type counterKeys struct {
	prefix string
	n      atomic.Uint64
}

// NewKeySource returns a monotonic key source. Keys are unique for the
// lifetime of the source; the random prefix keeps keys from different
// sources apart.
func NewKeySource() KeySource {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return NewPrefixedKeySource(prefix)
}

func NewPrefixedKeySource(prefix string) KeySource {
	return &counterKeys{prefix: prefix}
}

func (k *counterKeys) Next() string {
	return k.prefix + strconv.FormatUint(k.n.Add(1), 36)
}
