// Package packager builds the project package: it regenerates the README,
// the dependency manifest and the upload placeholder, walks the root while
// pruning excluded directories and files, and writes the survivors into a
// timestamped ZIP archive next to the project.
package packager
