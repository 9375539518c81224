package layout

import "fmt"

// Matrix is a grid of LEDs wired row by row.
type Matrix struct {
	Width, Height int
	// Serpentine reverses every odd row, as on zig-zag wired panels.
	Serpentine bool
}

// Index maps x,y -> linear LED index (0..N-1).
func (m Matrix) Index(x, y int) (int, error) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0, fmt.Errorf("(%d,%d) outside %dx%d matrix", x, y, m.Width, m.Height)
	}
	xx := x
	if m.Serpentine && y%2 == 1 {
		xx = m.Width - 1 - x
	}
	return y*m.Width + xx, nil
}

// Coords is the inverse of Index.
func (m Matrix) Coords(i int) (x, y int, err error) {
	if i < 0 || i >= m.Count() {
		return 0, 0, fmt.Errorf("index %d outside %dx%d matrix", i, m.Width, m.Height)
	}
	y = i / m.Width
	x = i % m.Width
	if m.Serpentine && y%2 == 1 {
		x = m.Width - 1 - x
	}
	return x, y, nil
}

func (m Matrix) Count() int {
	return m.Width * m.Height
}

// Rings93 lists the LED indexes of the Mokungit 93 LED WS2812 5050 ring
// board, innermost ring first.
var Rings93 = [][]int{
	{92},
	{91, 90, 89, 88, 87, 86, 85, 84},
	{83, 82, 81, 80, 79, 78, 77, 76, 75, 74, 73, 72},
	{71, 70, 69, 68, 67, 66, 65, 64, 63, 62, 61, 60, 59, 58, 57, 56},
	{55, 54, 53, 52, 51, 50, 49, 48, 47, 46, 45, 44, 43, 42, 41, 40, 39, 38, 37, 36, 35, 34, 33, 32},
	{31, 30, 29, 28, 27, 26, 25, 24, 23, 22, 21, 20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}
