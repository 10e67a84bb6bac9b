package main

import "github.com/lepinkainen/shamash/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
