// A content-addressed cache for album covers and video posters.
//
// This file is only here to make installing with go get easier.
// At the moment I don't see any other way to stash my source in the src directory
// instead of dumping it in the project root.
package main

import (
	"github.com/ironsmile/mediaart/src"
)

func main() {
	src.Main()
}
