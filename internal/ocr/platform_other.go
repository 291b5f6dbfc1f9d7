//go:build !windows

package ocr

func newPlatformRunner() platformRunner { return nil }
