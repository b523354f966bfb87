package main

import (
	"log"

	"github.com/ium-app/ium-server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
