package main

import (
	"github.com/ColonelBlimp/textdump/cmd"
	"github.com/ColonelBlimp/textdump/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
