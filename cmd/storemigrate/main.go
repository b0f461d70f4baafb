// File: cmd/storemigrate/main.go
package main

func main() {
	Execute()
}
