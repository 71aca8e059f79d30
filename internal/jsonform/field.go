package jsonform

// Field binds a textarea to a structured value. gin's form binding calls UnmarshalParam
// for a submitted key; a key that is not submitted leaves the Field unset.
type Field struct {
	Value any  `form:"-"`
	Set   bool `form:"-"`
}

func (f *Field) UnmarshalParam(param string) error {
	v, err := Decode(param)
	if err != nil {
		return err
	}
	f.Value = v
	f.Set = true
	return nil
}

func (f Field) String() string {
	return Encode(f.Value)
}

// Document returns the bound value when it is a JSON object.
func (f Field) Document() (Document, bool) {
	m, ok := f.Value.(map[string]any)
	return Document(m), ok
}
