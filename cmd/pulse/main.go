package main

import (
	"os"

	"workpulse.dev/pulse/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
