package inventory

import "math"

// Line is a requested quantity of one product
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Consolidate merges lines for the same product by summing their quantities.
// The result lists each product once, in order of first appearance. A sum that
// would overflow saturates at math.MaxInt.
func Consolidate(lines []Line) []Line {
	index := make(map[uint]int, len(lines))
	merged := make([]Line, 0, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity = addQuantity(merged[i].Quantity, line.Quantity)
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func addQuantity(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// ProductIDs returns the product ids of lines in order
func ProductIDs(lines []Line) []uint {
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	return ids
}
