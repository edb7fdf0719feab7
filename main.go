/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"github.com/josephgoksu/backlog/cmd"
	"github.com/josephgoksu/backlog/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
