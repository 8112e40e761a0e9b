package vm

import "fmt"

// OpCode is a single contract instruction byte.
type OpCode byte

const (
	PUSH  OpCode = 0x01 // push the transaction value
	ADD   OpCode = 0x02 // pop two, push their wrapped sum
	STORE OpCode = 0x03 // pop one, store it under the program key
	LOAD  OpCode = 0x04 // push the stored value, 0 when unset
)

var opNames = map[OpCode]string{
	PUSH:  "PUSH",
	ADD:   "ADD",
	STORE: "STORE",
	LOAD:  "LOAD",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(op))
}

// Known reports whether op has defined semantics. Other bytes execute as
// priced no-ops.
func (op OpCode) Known() bool {
	_, ok := opNames[op]
	return ok
}
