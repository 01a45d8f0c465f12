package main

import "github.com/Alijeyrad/carwash_portal/cmd"

func main() {
	cmd.Execute()
}
