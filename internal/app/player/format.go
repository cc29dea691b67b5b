package player

import "fmt"

// FormatTime renders a second count as MM:SS. Negative values render as
// 00:00; minutes keep growing past an hour.
func FormatTime(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
