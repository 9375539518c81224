package neopixel

// EstimateCurrent returns the approximate current in mA a frame draws at the
// given brightness, with channelMA per colour channel at full scale.
func EstimateCurrent(leds []uint32, brightness uint8, channelMA float64) float64 {
	var sum float64
	for _, c := range leds {
		r, g, b, w := Components(c)
		sum += float64(r) + float64(g) + float64(b) + float64(w)
	}
	return sum / 255.0 * channelMA * float64(brightness) / 255.0
}

// limitBrightness lowers brightness until the estimated current fits in
// limitMA. A zero limit or channel current leaves brightness unchanged.
func limitBrightness(leds []uint32, brightness uint8, channelMA, limitMA float64) uint8 {
	if limitMA <= 0 || channelMA <= 0 {
		return brightness
	}
	cur := EstimateCurrent(leds, brightness, channelMA)
	if cur <= limitMA {
		return brightness
	}
	return uint8(float64(brightness) * limitMA / cur)
}
