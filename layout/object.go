package layout

// Member is one named value of an Object.
type Member struct {
	Value any
	Name  string
}

// Object is a decoded struct. Members keep declaration order.
type Object struct {
	Name    string
	Members []Member
}

// Get returns the value of the named member.
func (o *Object) Get(name string) (any, bool) {
	for _, m := range o.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}
