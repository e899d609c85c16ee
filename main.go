package main

import "github.com/andresmejia3/growthlapse/cmd"

func main() {
	cmd.Execute()
}
