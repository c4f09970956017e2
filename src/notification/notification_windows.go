//go:build windows

package notification

import "golang.org/x/sys/windows"

func showDialog(title, text string) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	textPtr, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return err
	}
	_, err = windows.MessageBox(0, textPtr, titlePtr, windows.MB_OK|windows.MB_SETFOREGROUND|windows.MB_TOPMOST)
	return err
}
