package rolling_test

import (
	"fmt"

	"github.com/cwbudde/algo-audiocheck/stats/rolling"
)

func ExampleWindow_Finalize() {
	w := rolling.New()
	for i := 0; i < 20; i++ {
		w.Push(65)
	}
	s := w.Finalize()
	fmt.Printf("avg=%.1f trimmed=%v\n", s.Avg, s.Trimmed)

	// Output:
	// avg=65.0 trimmed=true
}
