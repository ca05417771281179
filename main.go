package main

import (
	"os"

	"github.com/GoAccess-Admin/GoAccess-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
