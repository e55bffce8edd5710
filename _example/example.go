// _example/example.go
package main

import (
	"fmt"

	"github.com/kenshaw/dmp"
)

const (
	text1 = "Lorem ipsum dolor."
	text2 = "Lorem dolor sit amet."
)

func main() {
	c := dmp.NewDefaultConfig()
	diffs := c.Diff(text1, text2, false)
	fmt.Println(c.DiffPrettyText(diffs))
	patches := c.PatchMake(text1, diffs)
	fmt.Print(c.PatchToText(patches))
}
