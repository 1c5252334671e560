// Package main is the entry point of the userapi service.
package main

import "userapi/cmd"

func main() {
	cmd.Execute()
}
