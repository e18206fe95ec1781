package main

import "terranova/cmd/terranova/root"

func main() {
	root.Execute()
}
