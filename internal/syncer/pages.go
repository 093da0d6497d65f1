package syncer

// pageCount returns the requested page count for the cabinet at index i.
// An empty list means the default; a short list repeats its last value
// for overflow indexes.
func pageCount(pages []int, i, def int) int {
	if len(pages) == 0 {
		return def
	}
	if i >= len(pages) {
		i = len(pages) - 1
	}
	return pages[i]
}
