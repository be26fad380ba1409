// Package exclusion contains the rules deciding which paths stay out of a package.
//
// A Set holds literal basenames matched exactly against every directory and
// file visited during a walk, plus a prefix that prunes hidden directories.
// Matching never looks at the full path, so an excluded name is skipped at
// any depth.
package exclusion
