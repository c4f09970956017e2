//go:build !windows

package notification

func showDialog(title, text string) error { return nil }
