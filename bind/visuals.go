package bind

import "github.com/akmonengine/motor"

// Visuals is the set of elements drawn for the character itself, hidden in first person
type Visuals struct {
	Elements []string
	hidden   bool
}

var _ motor.RenderToggle = (*Visuals)(nil)

func (v *Visuals) SetVisible(visible bool) {
	v.hidden = !visible
}

func (v *Visuals) Visible() bool {
	return !v.hidden
}

// Drawn lists the elements to render this frame
func (v *Visuals) Drawn() []string {
	if v.hidden {
		return nil
	}
	return v.Elements
}
