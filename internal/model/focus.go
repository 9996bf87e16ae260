package model

// Focus is the period/category the conversation is currently about, tracked
// by the history window and consulted read-only for pronoun resolution.
type Focus struct {
	Period   Period
	Category string
}

// Empty reports whether there is no current focus.
func (f Focus) Empty() bool {
	return f.Period == "" && f.Category == ""
}
