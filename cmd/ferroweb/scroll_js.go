//go:build js

package main

import "syscall/js"

// pageScroll reads the host page's vertical scroll offset.
func pageScroll() (float64, bool) {
	win := js.Global().Get("window")
	if win.IsUndefined() {
		return 0, false
	}
	return win.Get("scrollY").Float(), true
}
