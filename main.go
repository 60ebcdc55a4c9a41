package main

import "github.com/notargets/dgmesh/cmd"

func main() {
	cmd.Execute()
}
