package main

import (
	"os"

	"github.com/pharmadesk/pharmadesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
