package main

import (
	. "github.com/osintlabs/lookup-api-go/logger"
	"github.com/osintlabs/lookup-api-go/server"
)

func main() {
	// Init the logger first thing
	InitLogger()
	server.Launch()
}
