package main

import "github.com/Yudaimo23/yt-summarizer/internal/cli"

func main() {
	cli.Main()
}
