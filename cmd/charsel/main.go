package main

import "charselect/cmd/charsel/cmd"

func main() {
	cmd.Execute()
}
