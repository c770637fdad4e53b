// Package formats holds the static conversion catalog: which formats exist,
// which category owns each one, and which outputs a category can produce.
package formats
