package main

import "github.com/UVA-Computer-Vision-Lab/rivanna-resource/cmd"

func main() {
	cmd.Execute()
}
