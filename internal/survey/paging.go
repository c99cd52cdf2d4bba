package survey

const (
	// DefaultPageSize applies when a request omits the size parameter.
	DefaultPageSize = 50
	// UnlimitedSize (size=0) means one page containing everything.
	UnlimitedSize = 0
)

// NormalizePage clamps a page number to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// EffectiveLimit resolves the page-fetch limit: the requested size, or the
// total row count when size is 0 (unlimited).
func EffectiveLimit(size int, total int64) int64 {
	if size <= UnlimitedSize {
		return total
	}
	return int64(size)
}

// Pages computes the page count for a limit already resolved by
// EffectiveLimit: ceil(total/limit), or 0 when the limit is 0 (which only
// happens for an unlimited request over an empty result).
func Pages(total, limit int64) int {
	if limit <= 0 {
		return 0
	}
	return int((total + limit - 1) / limit)
}
