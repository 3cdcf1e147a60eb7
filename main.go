package main

import "github.com/frahmantamala/training-management/cmd"

func main() {
	cmd.Execute()
}
