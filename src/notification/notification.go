// Package notification tells the operator why a run stopped.
package notification

import (
	"log"
	"unicode/utf8"
)

const maxTextLen = 1000

// ShowDialog shows a topmost message box and blocks until it is dismissed.
// Where no native dialog exists the message is only logged.
func ShowDialog(title, text string) {
	text = truncate(text, maxTextLen)
	log.Printf("dialog: %s: %s", title, text)
	if err := showDialog(title, text); err != nil {
		log.Printf("dialog: failed to show message box: %v", err)
	}
}

// truncate cuts text to at most n bytes on a rune boundary.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}
