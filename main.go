// main is the entry point of the gridthreat CLI.
package main

import (
	"github.com/huangsam/gridthreat/cmd"
	"github.com/huangsam/gridthreat/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("gridthreat failed", err)
	}
}
