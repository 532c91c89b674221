package main

import "github.com/hmans/tweetgraph/cmd"

func main() {
	cmd.Execute()
}
