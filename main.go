package main

import "github.com/thaispeech/autotag/cmd"

func main() {
	cmd.Execute()
}
