package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	str := strconv.FormatInt(balance, 10)

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatPercent renders a probability in [0, 1] as a percentage with up to two decimals
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(p*100, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}

// FormatSpinCount renders a free spin count with the right plural
func FormatSpinCount(n int) string {
	if n == 1 {
		return "1 free spin"
	}
	return fmt.Sprintf("%d free spins", n)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
