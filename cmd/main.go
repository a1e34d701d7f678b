// cmd/main.go
package main

import "github.com/mwiater/chatgen/cmd/chatgen"

func main() {
	chatgen.Execute()
}
