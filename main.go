package main

import "github.com/termtap/termtap/cmd"

func main() {
	cmd.Execute()
}
