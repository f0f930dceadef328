package main

import (
	"pos_ledger/cmd"
)

func main() {
	cmd.Execute()
}
