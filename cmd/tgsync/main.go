package main

import "tgsync/cmd/tgsync/cmd"

func main() {
	cmd.Execute()
}
