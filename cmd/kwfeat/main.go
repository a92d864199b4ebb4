package main

import "github.com/RyanBlaney/sonido-kws/cmd"

func main() {
	cmd.Execute()
}
