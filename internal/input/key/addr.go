package key

import "fmt"

// Addr identifies a physical key location as a flat matrix offset.
type Addr uint8

// AddrNone is the address carried by injected events that have no
// physical location.
const AddrNone Addr = 0xFF

// IsValid reports whether a refers to a physical location.
func (a Addr) IsValid() bool {
	return a != AddrNone
}

// String returns the flat offset, or "none".
func (a Addr) String() string {
	if !a.IsValid() {
		return "none"
	}
	return fmt.Sprintf("#%d", uint8(a))
}

// Matrix describes the geometry of a key matrix.
type Matrix struct {
	Rows uint8
	Cols uint8
}

// Size returns the number of addressable locations.
func (m Matrix) Size() int {
	return int(m.Rows) * int(m.Cols)
}

// Addr converts a row/column pair into an address.
// Out-of-range coordinates yield AddrNone.
func (m Matrix) Addr(row, col uint8) Addr {
	if row >= m.Rows || col >= m.Cols {
		return AddrNone
	}
	offset := int(row)*int(m.Cols) + int(col)
	if offset >= int(AddrNone) {
		return AddrNone
	}
	return Addr(offset)
}

// RowCol converts an address back into a row/column pair.
func (m Matrix) RowCol(a Addr) (row, col uint8, ok bool) {
	if !a.IsValid() || m.Cols == 0 || int(a) >= m.Size() {
		return 0, 0, false
	}
	return uint8(int(a) / int(m.Cols)), uint8(int(a) % int(m.Cols)), true
}

// All returns every address in the matrix in row-major order.
func (m Matrix) All() []Addr {
	size := m.Size()
	if size > int(AddrNone) {
		size = int(AddrNone)
	}
	addrs := make([]Addr, size)
	for i := range addrs {
		addrs[i] = Addr(i)
	}
	return addrs
}
