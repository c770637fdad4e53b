// Package detect classifies uploads into catalog format ids using ordered
// strategies: filename extension, binary signatures, declared content type,
// and text heuristics for ambiguous payloads.
package detect
