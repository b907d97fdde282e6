// sexp-probe parses a schematic file with both the in-house reader and
// the chewxy/sexp package and prints what each one sees. Useful when a
// file fails to parse and the question is whose fault it is.
package main

import (
	"fmt"
	"os"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/csn/pkg/kicad/sexp/kicadsexp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sexp-probe <schematic_file>")
		os.Exit(1)
	}

	filename := os.Args[1]
	file, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	info, _ := file.Stat()
	fmt.Printf("File size: %d bytes (%.2f MB)\n", info.Size(), float64(info.Size())/1024/1024)

	fmt.Println("\nIn-house parser:")
	exprs, err := kicadsexp.Parse(file)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
	} else {
		fmt.Printf("  Success! Parsed %d s-expressions\n", len(exprs))
		if len(exprs) > 0 && !exprs[0].IsLeaf() {
			fmt.Printf("  Head: %s\n", exprs[0].Head())
			fmt.Printf("  Leaf count: %d\n", exprs[0].LeafCount())
		}
	}

	file.Seek(0, 0)

	fmt.Println("\nchewxy/sexp.Parse(io.Reader):")
	sexps, err := sexp.Parse(file)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
	} else {
		fmt.Printf("  Success! Parsed %d s-expressions\n", len(sexps))
		if len(sexps) > 0 {
			fmt.Printf("  First sexp is leaf: %v\n", sexps[0].IsLeaf())
			if !sexps[0].IsLeaf() {
				fmt.Printf("  Leaf count: %d\n", sexps[0].LeafCount())
			}
		}
	}
}
