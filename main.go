// Package main is the entry point for the srodbpatch CLI.
// It backs up, patches and restores tables of a Silkroad Online game database.
package main

import (
	"srodbpatch/cli/cmd"
)

func main() {
	cmd.Execute()
}
