// Package seq holds sequence helpers over iter.Seq.
package seq

import "iter"

func Map[T, U any](s iter.Seq[T], fn func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range s {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

func Filter[T any](s iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

func Reduce[T, A any](s iter.Seq[T], acc A, fn func(A, T) A) A {
	for v := range s {
		acc = fn(acc, v)
	}
	return acc
}

// Collect drains s into a slice. An empty sequence gives an empty, non-nil
// slice so it encodes as [] rather than null.
func Collect[T any](s iter.Seq[T]) []T {
	out := []T{}
	for v := range s {
		out = append(out, v)
	}
	return out
}
