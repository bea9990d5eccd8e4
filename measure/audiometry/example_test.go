package audiometry_test

import (
	"fmt"

	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
)

func ExampleGainForLevel() {
	for _, level := range []int{0, 60, 80, 100} {
		fmt.Printf("%d: %.2f\n", level, audiometry.GainForLevel(level))
	}
	// Output:
	// 0: 0.00
	// 60: 0.10
	// 80: 1.00
	// 100: 10.00
}

func ExampleScoreResult() {
	r := audiometry.NewResult()
	for _, ear := range []audiometry.Ear{audiometry.Left, audiometry.Right} {
		for _, hz := range audiometry.Frequencies {
			r.Set(ear, hz, 20)
		}
	}
	s := audiometry.ScoreResult(r, audiometry.UserProfile{Gender: audiometry.GenderMale})
	fmt.Println(s.Left.Class, s.HearingAge, s.Comment)
	// Output: Normal 32 Good. Normal for an adult.
}
