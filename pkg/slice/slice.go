// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds generic slice helpers the standard [slices] package lacks.
package slice

// Map returns transform applied to every element of input, in order.
// A nil input maps to nil so "absent" and "empty" stay distinguishable.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}
