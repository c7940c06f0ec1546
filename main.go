package main

import "cidl/cmd"

func main() {
	cmd.Execute()
}
