package main

import (
	"github.com/biosecret/todo-list/app"
	_ "github.com/biosecret/todo-list/docs"
)

func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
