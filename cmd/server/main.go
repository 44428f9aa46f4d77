// Command server runs the control tower API and its maintenance commands.
package main

func main() {
	Execute()
}
