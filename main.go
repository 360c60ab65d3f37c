package main

import "github.com/mlanham/csvsleuth/cmd"

func main() {
	cmd.Execute()
}
