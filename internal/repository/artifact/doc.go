// Package artifact writes the files the packager generates inside the root
// before walking it: the README, the dependency manifest and the placeholder
// that keeps the upload directory alive in version control.
//
// Generated files are always overwritten. When the previous content differs,
// a unified diff is logged at debug level.
package artifact
