package main

import (
	"liquidshuffle/cmd"
)

func main() {
	cmd.Execute()
}
