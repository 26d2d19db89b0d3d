package main

import "github.com/andresmejia3/gestureprep/cmd"

func main() {
	cmd.Execute()
}
