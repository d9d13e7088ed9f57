package main

import (
	"github.com/sim0n-says/AnalyseFauneQuebec/cmd"
)

func main() {
	cmd.Execute()
}
