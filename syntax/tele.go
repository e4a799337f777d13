package syntax

// A Telescope is a sequence of parameter declarations and
// constraints. Each entry is in the scope of the parameters
// before it: inside the entry after a Param, the Param's
// variable has index 0.
type Telescope []TeleEntry

// A TeleEntry is one entry of a Telescope:
// a *Param or a *Constraint.
type TeleEntry interface {
	String() string

	isTeleEntry()
}

// A Param declares a telescope variable and its type.
// Name is only a printing hint.
type Param struct {
	Name string
	Type Term
}

// A Constraint requires a variable to equal a term.
// It binds nothing.
type Constraint struct {
	Var int
	Val Term
}

func (*Param) isTeleEntry()      {}
func (*Constraint) isTeleEntry() {}

// Binds returns the number of variables the telescope binds.
func (t Telescope) Binds() int {
	var n int
	for _, e := range t {
		if _, ok := e.(*Param); ok {
			n++
		}
	}
	return n
}

// A DataDef is a datatype definition: the telescope of its
// parameters and its constructors.
type DataDef struct {
	Name   string
	Params Telescope
	Cons   []*ConDef
}

// A ConDef is a data constructor: the telescope of its arguments,
// in the scope of the datatype's parameters.
type ConDef struct {
	Name string
	Args Telescope
}

// Con returns the definition of the named constructor, if any.
func (d *DataDef) Con(name string) (*ConDef, bool) {
	for _, c := range d.Cons {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
