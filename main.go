package main

import "github.com/Parth7487/imagedup/cmd"

func main() {
	cmd.Execute()
}
