package main

import "sv2v/pkg/cmd"

func main() {
	cmd.Execute()
}
