package airway

// UnitFootprint is the vertical space one airplane lane takes, in pixels.
const UnitFootprint = 32

// Capacity returns how many airplanes fit a surface of the given height.
func Capacity(height int) int {
	if height <= 0 {
		return 0
	}
	return height / UnitFootprint
}
