// Package primes composes prime number sequences from iterators.
package primes

import (
	"iter"
	"math"
)

// Range yields 2, 3, ..., n-1. It is empty for n <= 2.
func Range(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for x := 2; x < n; x++ {
			if !yield(x) {
				return
			}
		}
	}
}

// Divisors yields the divisors of n found in Range(n), in ascending order
func Divisors(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for x := range Range(n) {
			if n%x == 0 && !yield(x) {
				return
			}
		}
	}
}

// IsPrime reports whether n is greater than one and has no divisors
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	// a composite n has a divisor no larger than its square root
	limit := int(math.Sqrt(float64(n)))
	for x := 2; x <= limit; x++ {
		if n%x == 0 {
			return false
		}
	}
	return true
}

// All yields the primes in ascending order up to math.MaxInt32
func All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for x := range Range(math.MaxInt32) {
			if IsPrime(x) && !yield(x) {
				return
			}
		}
	}
}

// Nth returns the k-th prime counting from zero, so Nth(0) is 2.
// Negative k counts as zero.
func Nth(k int) int {
	i := 0
	for p := range All() {
		if i >= k {
			return p
		}
		i++
	}
	return 0
}

// First returns the first n primes
func First(n int) []int {
	out := make([]int, 0, max(n, 0))
	if n <= 0 {
		return out
	}
	for p := range All() {
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}
