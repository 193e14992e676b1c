package common

import (
	"strconv"
)

// ContainsInt64Slice returns true if the slice contains the int64
func ContainsInt64Slice(slice []int64, search int64) bool {
	for _, v := range slice {
		if v == search {
			return true
		}
	}

	return false
}

// MustParseInt parses the string into an int64, panicking on failure.
// Only for input that is known to be well formed (snowflakes from discord).
func MustParseInt(s string) int64 {
	r, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		panic("failed parsing int: " + s + ", " + err.Error())
	}

	return r
}

// ParseInt64 is MustParseInt without the panic, 0 on failure
func ParseInt64(s string) int64 {
	r, _ := strconv.ParseInt(s, 10, 64)
	return r
}
