// Package common holds helpers shared by packager services.
//
// It currently detects other running instances of the packager so that two
// runs do not race on the generated files of the same project.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
