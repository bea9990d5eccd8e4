package audiometry

// Gender as answered in the questionnaire.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// UserProfile is the questionnaire answered before the test.
type UserProfile struct {
	AgeGroup string `json:"age_group"`
	Gender   Gender `json:"gender"`
	Device   string `json:"device"`
}

// DefaultDevice is the preselected headphone type.
const DefaultDevice = "over-ear"

// Complete reports whether the required answers are given.
func (p UserProfile) Complete() bool {
	return p.AgeGroup != "" && p.Gender != ""
}
