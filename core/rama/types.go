package rama

import "strconv"

// EncodedValue is the tagged-string wire form of a typed scalar. JSON has no
// way to say "this number is a short", so the cluster reserves strings
// beginning with "#__" plus a kind letter; the remainder is the value's
// canonical text form. Plain strings without the sentinel pass through as
// ordinary JSON values.
type EncodedValue string

// Long encodes a 64-bit signed integer.
func Long(v int64) EncodedValue {
	return EncodedValue("#__L" + strconv.FormatInt(v, 10))
}

// Byte encodes an 8-bit signed integer.
func Byte(v int8) EncodedValue {
	return EncodedValue("#__B" + strconv.FormatInt(int64(v), 10))
}

// Short encodes a 16-bit signed integer.
func Short(v int16) EncodedValue {
	return EncodedValue("#__S" + strconv.FormatInt(int64(v), 10))
}

// Float encodes a 32-bit float.
func Float(v float32) EncodedValue {
	return EncodedValue("#__F" + strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Char encodes a single character.
func Char(v rune) EncodedValue {
	return EncodedValue("#__C" + string(v))
}

// Keyword encodes a Clojure keyword, e.g. Keyword("user-id") for :user-id.
func Keyword(name string) EncodedValue {
	return EncodedValue("#__K" + name)
}

// Function encodes a reference to a named function on the cluster.
func Function(name string) EncodedValue {
	return EncodedValue("#__f" + name)
}

// OpsFunction encodes a reference to a built-in Ops function,
// e.g. OpsFunction("IS_EVEN") for Ops.IS_EVEN.
func OpsFunction(name string) EncodedValue {
	return Function("Ops." + name)
}
