package textnorm

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// FlexibleString converts an untyped scalar to a string, handling cases
// where models return numbers or booleans instead of strings. Nil and
// unknown shapes return the empty string.
func FlexibleString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// TruncateRunes caps s at n runes. Counting runes instead of bytes keeps
// the result valid UTF-8.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// FlexibleBool converts an untyped scalar to a bool. Strings "true"/"1"
// count as true; everything unrecognized is false.
func FlexibleBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t != 0
	default:
		return false
	}
}
