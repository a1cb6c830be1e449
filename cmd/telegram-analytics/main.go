package main

import (
	"log"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
