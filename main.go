// The main package for the sitesnap executable.
package main

import (
	"github.com/hollis-b/sitesnap/cmd"
)

func main() {
	cmd.Execute()
}
