package main

import (
	"log"

	"nightmarket/cmd"
	_ "nightmarket/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
