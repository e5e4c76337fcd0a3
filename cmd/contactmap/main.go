// cmd/contactmap/main.go
package main

import (
	"contactmap/internal/app"
	"contactmap/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
