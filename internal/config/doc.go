// Package config defines the packager settings and provides helpers to
// load, validate and save them in YAML format.
//
// Default returns the built-in settings: archive prefix, exclusion list,
// upload directory layout and the contents of the generated README and
// dependency manifest. A settings file only needs the fields it overrides.
package config
