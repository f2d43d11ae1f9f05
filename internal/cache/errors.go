package cache

import (
	"errors"
	"fmt"
)

// ErrCacheCorruption is matched by every *CacheCorruptionError.
var ErrCacheCorruption = errors.New("cache corruption")

// CacheCorruptionError describes a stored entry that failed its integrity
// check. It never reaches callers; the entry is dropped and recomputed.
type CacheCorruptionError struct {
	Key    Key
	Reason string
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("corrupt cache entry %q: %s", e.Key, e.Reason)
}

func (e *CacheCorruptionError) Is(target error) bool {
	return target == ErrCacheCorruption
}
