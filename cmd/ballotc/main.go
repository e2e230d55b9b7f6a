package main

import (
	"log"

	cmd "github.com/nknorg/ballot/cmd/ballotc/commands"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("Panic: %+v", r)
		}
	}()

	cmd.Execute()
}
