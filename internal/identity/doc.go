// Package identity derives canonical customer identities from spreadsheet
// rows. The normalization policy is pluggable; the default collapses names
// differing only by surrounding whitespace or letter case into one identity.
package identity
