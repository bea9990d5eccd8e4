package spl_test

import (
	"fmt"

	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

func ExampleEstimateDb() {
	for _, avg := range []float64{0, 10, 60, 150} {
		fmt.Println(spl.EstimateDb(avg))
	}
	// Output:
	// 25
	// 50
	// 80
	// 100
}

func ExampleClassifyExposure() {
	e := spl.ClassifyExposure(92)
	fmt.Println(e.Icon, e.MessageKey)
	// Output: ⚠️ warning2h
}
