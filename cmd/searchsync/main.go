package main

import "github.com/filmoteka/searchsync/cmd/searchsync/cmd"

func main() {
	cmd.Execute()
}
