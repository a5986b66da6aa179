//go:build !js

package main

// pageScroll has no page to read outside the browser; the wheel drives a
// virtual offset instead.
func pageScroll() (float64, bool) {
	return 0, false
}
