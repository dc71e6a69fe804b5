package features

import (
	"math"
	"time"
)

// tempSeasonFactor is the expected relative temperature level per calendar
// month (Northern Hemisphere), used as a seasonal prior for temperature models.
var tempSeasonFactor = map[time.Month]float64{
	time.December: 0.2, time.January: 0.1, time.February: 0.3,
	time.March: 0.6, time.April: 0.8, time.May: 0.9,
	time.June: 1.0, time.July: 1.0, time.August: 1.0,
	time.September: 0.8, time.October: 0.6, time.November: 0.4,
}

// seasonName maps a calendar month to its meteorological season.
func seasonName(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// dayOfWeek returns the weekday with Monday=0 and Sunday=6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// AddTimeFeatures derives calendar, cyclical and business-context columns from
// the frame's timestamp index. Cyclical encodings map each periodic quantity
// onto the unit circle so that midnight and 23:00 end up adjacent.
func AddTimeFeatures(f *Frame, includeSeasonal bool) {
	n := f.Len()

	hour := make([]float64, n)
	day := make([]float64, n)
	month := make([]float64, n)
	quarter := make([]float64, n)
	hourSin := make([]float64, n)
	hourCos := make([]float64, n)
	daySin := make([]float64, n)
	dayCos := make([]float64, n)
	monthSin := make([]float64, n)
	monthCos := make([]float64, n)
	isWeekend := make([]float64, n)
	isNight := make([]float64, n)
	isFeeding := make([]float64, n)

	var season []string
	var seasonFactor []float64
	if includeSeasonal {
		season = make([]string, n)
		seasonFactor = make([]float64, n)
	}

	for i, t := range f.Index() {
		h := t.Hour()
		d := dayOfWeek(t)
		m := int(t.Month())

		hour[i] = float64(h)
		day[i] = float64(d)
		month[i] = float64(m)
		quarter[i] = float64((m-1)/3 + 1)

		hourSin[i] = math.Sin(2 * math.Pi * float64(h) / 24)
		hourCos[i] = math.Cos(2 * math.Pi * float64(h) / 24)
		daySin[i] = math.Sin(2 * math.Pi * float64(d) / 7)
		dayCos[i] = math.Cos(2 * math.Pi * float64(d) / 7)
		monthSin[i] = math.Sin(2 * math.Pi * float64(m) / 12)
		monthCos[i] = math.Cos(2 * math.Pi * float64(m) / 12)

		if d == 5 || d == 6 {
			isWeekend[i] = 1
		}
		if h >= 22 || h <= 5 {
			isNight[i] = 1
		}
		if h == 8 || h == 12 || h == 18 {
			isFeeding[i] = 1
		}

		if includeSeasonal {
			season[i] = seasonName(t.Month())
			seasonFactor[i] = tempSeasonFactor[t.Month()]
		}
	}

	f.SetFloat("hour", hour)
	f.SetFloat("day_of_week", day)
	f.SetFloat("month", month)
	f.SetFloat("quarter", quarter)
	f.SetFloat("hour_sin", hourSin)
	f.SetFloat("hour_cos", hourCos)
	f.SetFloat("day_sin", daySin)
	f.SetFloat("day_cos", dayCos)
	f.SetFloat("month_sin", monthSin)
	f.SetFloat("month_cos", monthCos)
	f.SetFloat("is_weekend", isWeekend)
	f.SetFloat("is_night", isNight)
	f.SetFloat("is_feeding_time", isFeeding)

	if includeSeasonal {
		f.SetLabel("season", season)
		f.SetFloat("temp_season_factor", seasonFactor)
	}
}
