package interpreter

import "oak/toolchain-go/pkg/runtime"

// appendPrinted appends the printed form of lit. Arrays are flattened, so a
// two-dimensional array prints as its elements in row order.
func appendPrinted(parts []string, lit runtime.Literal) []string {
	arr, ok := lit.Value.(*runtime.ArrayListInstance)
	if !ok {
		return append(parts, lit.String())
	}
	for _, el := range arr.Elements {
		parts = appendPrinted(parts, el)
	}
	return parts
}
