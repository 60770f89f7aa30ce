// Package util holds small request helpers shared by the HTTP handlers.
package util

// PageWindow converts 1-based page/size query values into an SQL offset
// and limit. Size is clamped to [1, 100] and defaults to 20.
func PageWindow(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
