package main

import "courtsync/cmd"

func main() {
	cmd.Execute()
}
