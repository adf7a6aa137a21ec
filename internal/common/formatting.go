package common

import "fmt"

func ShortenName(s string, length int) string {
	if len(s) <= length*2 {
		return s
	}

	firstSix := s[:length]
	lastSix := s[len(s)-length:]
	return fmt.Sprintf("%s__%s", firstSix, lastSix)
}

// ShortenAddress renders 0x1234…abcd style addresses for terminal output.
func ShortenAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}

	return fmt.Sprintf("%s…%s", addr[:6], addr[len(addr)-4:])
}
