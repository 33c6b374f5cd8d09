package light

// MinutesPerDay is the length of a game day
const MinutesPerDay = 24 * 60

// Color is an RGB triple
type Color struct{ R, G, B uint8 }

// DayColor interpolates the ambient color for a minute of the day from four
// key times and four colors packed as RGB triples. After the last key time
// the color blends back toward the first key of the next day.
func DayColor(minute int, times [4]int, colors [12]uint8) Color {
	minute %= MinutesPerDay
	if minute < 0 {
		minute += MinutesPerDay
	}
	key := func(i int) Color {
		return Color{colors[i*3], colors[i*3+1], colors[i*3+2]}
	}

	var from, to int
	var t0, t1 int
	switch {
	case minute >= times[3]:
		from, to = 3, 0
		t0, t1 = times[3], times[0]+MinutesPerDay
	case minute < times[0]:
		from, to = 3, 0
		t0, t1 = times[3]-MinutesPerDay, times[0]
	default:
		for i := 0; i < 3; i++ {
			if minute >= times[i] && minute < times[i+1] {
				from, to = i, i+1
				t0, t1 = times[i], times[i+1]
				break
			}
		}
	}
	a, b := key(from), key(to)
	span := t1 - t0
	if span <= 0 {
		return a
	}
	p := minute - t0
	lerp := func(x, y uint8) uint8 {
		return uint8(int(x) + (int(y)-int(x))*p/span)
	}
	return Color{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}
