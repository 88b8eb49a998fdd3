package main

import (
	"log"

	"github.com/ysy950803/chatroster/cmd/chatroster"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	chatroster.Execute()
}
