package main

import "github.com/cblmemo/HeterogeneousLBSimulator/cmd"

func main() {
	cmd.Execute()
}
