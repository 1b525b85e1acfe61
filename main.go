package main

import "github.com/yelo-o/Server-PokemonReviewAPI/cmd"

func main() {
	cmd.Execute()
}
