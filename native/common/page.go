package common

const (
	DefaultLimit = 10
	MaxLimit     = 30
)

// Limit clamps a caller supplied page size.
func Limit(limit *uint32) int {
	if limit == nil {
		return DefaultLimit
	}
	if *limit > MaxLimit {
		return MaxLimit
	}
	return int(*limit)
}

// Page returns up to Limit(limit) items, skipping every leading item for
// which after reports false. Items must already be in iteration order.
func Page[T any](items []T, after func(T) bool, limit *uint32) []T {
	n := Limit(limit)
	out := make([]T, 0, n)
	for _, item := range items {
		if len(out) >= n {
			break
		}
		if after != nil && !after(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
