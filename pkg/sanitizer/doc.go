// Package sanitizer normalizes free-form user input before validation and
// persistence. Normalizers return the cleaned value; they never error.
package sanitizer
