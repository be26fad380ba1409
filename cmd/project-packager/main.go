// Command project-packager archives a project directory into a timestamped ZIP file.
package main

import "github.com/oshokin/project-packager/cmd/project-packager/cmd"

func main() {
	cmd.Execute()
}
