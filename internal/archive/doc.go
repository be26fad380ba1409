// Package archive writes the package file: a ZIP container with deflate
// compressed entries named by their slash-separated path relative to the
// packaged root.
package archive
