package main

import (
	"os"

	"github.com/FazinHan/lmstudio-webapp/cmd"
	"github.com/FazinHan/lmstudio-webapp/internal/app"
)

func main() {
	app := app.NewDefaultApp()
	if err := cmd.RootCommand(app).Execute(); err != nil {
		os.Exit(1)
	}
}
