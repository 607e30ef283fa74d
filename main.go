package main

import "github.com/AtticusColwell/game-data-collector-primitive/cmd"

func main() {
	cmd.Execute()
}
