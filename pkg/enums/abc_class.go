package enums

import "fmt"

// ABCClass is the Pareto value classification of a product.
type ABCClass string

const (
	ABCClassA ABCClass = "A"
	ABCClassB ABCClass = "B"
	ABCClassC ABCClass = "C"
)

var validABCClasses = []ABCClass{ABCClassA, ABCClassB, ABCClassC}

// String implements fmt.Stringer.
func (c ABCClass) String() string {
	return string(c)
}

// Valid reports whether the class is one of A, B, C.
func (c ABCClass) Valid() bool {
	for _, valid := range validABCClasses {
		if c == valid {
			return true
		}
	}
	return false
}

// ParseABCClass converts a raw string into an ABCClass.
func ParseABCClass(value string) (ABCClass, error) {
	class := ABCClass(value)
	if !class.Valid() {
		return "", fmt.Errorf("invalid abc class %q", value)
	}
	return class, nil
}
