package model

// Intent is the classifier's reading of a free-text message. A zero Intent
// means nothing actionable was found.
type Intent struct {
	Action         string
	Parameters     map[string]string
	RequireConfirm bool
}

// HasAction reports whether the classifier detected an action.
func (i Intent) HasAction() bool {
	return i.Action != ""
}
