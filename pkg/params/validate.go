package params

import "fmt"

// ValidationError describes a parameter outside its bounds. It is a value
// for display, never a reason to abort.
type ValidationError struct {
	Group   GroupName
	Name    Name
	Value   int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (got %d)", e.Group, e.Name, e.Message, e.Value)
}

// Validate returns one ValidationError per invalid parameter, grouped in
// display order. An empty slice means the desk can be built.
func (d *DeskParameters) Validate() []ValidationError {
	var errs []ValidationError
	for _, g := range d.Groups() {
		for _, p := range g.Parameters() {
			if p.Valid() {
				continue
			}
			errs = append(errs, ValidationError{
				Group:   g.Name,
				Name:    p.Name,
				Value:   p.Value,
				Message: p.Message(),
			})
		}
	}
	return errs
}
