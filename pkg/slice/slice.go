// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds generic helpers missing from the standard [slices] package.
package slice

// Filter returns the elements for which keep is true, in order. A nil input
// yields nil.
func Filter[T any](input []T, keep func(T) bool) []T {
	if input == nil {
		return nil
	}

	var result []T
	for _, value := range input {
		if keep(value) {
			result = append(result, value)
		}
	}
	return result
}

// Unique drops repeated values, keeping first-seen order.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]struct{}, len(input))
	return Filter(input, func(value T) bool {
		if _, dup := seen[value]; dup {
			return false
		}
		seen[value] = struct{}{}
		return true
	})
}
