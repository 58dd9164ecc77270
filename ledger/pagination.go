package ledger

// Listing defaults and limits.
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// NormalizePage clamps a requested page number to >= 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}

	return page
}

// NormalizeSize clamps a requested page size into [1, MaxPageSize].
// A zero or negative size falls back to DefaultPageSize.
func NormalizeSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}

	if size > MaxPageSize {
		return MaxPageSize
	}

	return size
}

// TotalPages computes ceil(total/size), which is 0 when total is 0.
func TotalPages(total int, size int) int {
	return (total + size - 1) / size
}

// BookPage is one page of active books, ordered by identifier ascending for
// deterministic pagination.
type BookPage struct {
	Items      []BookView
	Page       int
	Size       int
	Total      int
	TotalPages int
}
