// Package security implements the pre-flight scan gate. Submissions with a
// non-clean result are rejected before any job record exists.
package security
