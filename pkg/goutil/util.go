package goutil

import (
	"strings"
)

func Contains[T comparable](arr []T, target T) bool {
	for _, v := range arr {
		if v == target {
			return true
		}
	}
	return false
}

// Dedupe keeps the first occurrence of each value, preserving order.
func Dedupe[T comparable](arr []T) []T {
	seen := make(map[T]struct{}, len(arr))
	res := make([]T, 0, len(arr))
	for _, v := range arr {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// SplitTrim splits s by sep, dropping blank parts.
func SplitTrim(s, sep string) []string {
	res := make([]string, 0)
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
