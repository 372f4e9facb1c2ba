package knngraph_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/knngraph"
)

func Example() {
	// Three points on a line: 0, 1 and 3.
	data, err := knngraph.MatrixFromSlice(1, 3, []float32{0, 1, 3})
	if err != nil {
		log.Fatal(err)
	}

	g, err := knngraph.Build(context.Background(), data,
		knngraph.WithK(2),
		knngraph.WithThreshold(3),
		knngraph.WithTrees(1),
		knngraph.WithMaxIter(1),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(g.Neighbors(0))
	// Output: [2 1]
}
