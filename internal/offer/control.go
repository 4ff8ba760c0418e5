package offer

// Control is the state of an interactive button: the buy button of an item,
// or the accept/reject buttons of a pending offer. A busy control cannot be
// pressed again until the call that made it busy settles or restores it.
type Control struct {
	Label   string
	Enabled bool
	Busy    bool

	saved *Control
}

// NewControl returns an enabled control with the given label.
func NewControl(label string) *Control {
	return &Control{Label: label, Enabled: true}
}

// Begin marks the control busy and remembers its prior state for Restore.
// Returns false if the control is already busy or disabled.
func (c *Control) Begin() bool {
	if c.Busy || !c.Enabled {
		return false
	}
	prior := *c
	c.saved = &prior
	c.Busy = true
	c.Enabled = false
	return true
}

// Restore puts the control back into the state it had before Begin.
func (c *Control) Restore() {
	if c.saved == nil {
		return
	}
	*c = *c.saved
}

// Settle ends the busy state, leaving the control disabled with label.
func (c *Control) Settle(label string) {
	c.Label = label
	c.Busy = false
	c.Enabled = false
	c.saved = nil
}

// DecisionControls is the accept/reject pair of one pending offer.
type DecisionControls struct {
	Accept *Control
	Reject *Control
}

// NewDecisionControls returns an enabled accept/reject pair.
func NewDecisionControls() *DecisionControls {
	return &DecisionControls{Accept: NewControl("Accept"), Reject: NewControl("Reject")}
}

// begin marks both controls busy. Returns false if either is unavailable.
func (d *DecisionControls) begin() bool {
	if d.Accept.Busy || d.Reject.Busy || !d.Accept.Enabled || !d.Reject.Enabled {
		return false
	}
	d.Accept.Begin()
	d.Reject.Begin()
	return true
}

func (d *DecisionControls) restore() {
	d.Accept.Restore()
	d.Reject.Restore()
}

func (d *DecisionControls) settle(label string) {
	d.Accept.Settle(label)
	d.Reject.Settle(label)
}
