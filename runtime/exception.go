package runtime

import (
	"errors"
	"strings"
)

// Exception carries a value raised by a throw statement.
type Exception struct {
	Value *Value
}

func (e *Exception) Error() string {
	return "Uncaught " + Describe(e.Value)
}

// Throw wraps v so it can travel as a Go error.
func Throw(v *Value) error {
	return &Exception{Value: v}
}

// ThrowError raises a fresh error object of the given kind.
func ThrowError(name, message string) error {
	return &Exception{Value: NewObject(NewErrorObject(name, message))}
}

var errorNames = []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "Error"}

// ErrorValue converts err into the script value a catch clause receives.
// Host errors such as "TypeError: x is not a function" become error objects
// of the matching kind.
func ErrorValue(err error) *Value {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Value
	}
	msg := err.Error()
	for _, name := range errorNames {
		if rest, ok := strings.CutPrefix(msg, name+": "); ok {
			return NewObject(NewErrorObject(name, rest))
		}
	}
	return NewObject(NewErrorObject("Error", msg))
}

// Describe renders v for diagnostics. Error objects print as "Name: message".
func Describe(v *Value) string {
	if v == nil {
		return "undefined"
	}
	if v.Type == TypeObject && v.Object.OType == ObjTypeError {
		name := v.Object.Get("name").ToString()
		msg := v.Object.Get("message").ToString()
		if msg == "" {
			return name
		}
		return name + ": " + msg
	}
	if v.Type == TypeSymbol {
		return "Symbol(" + v.Symbol.Description + ")"
	}
	return v.ToString()
}
