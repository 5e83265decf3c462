package calendar

import "time"

// PublicHoliday is a reference date before it is persisted.
type PublicHoliday struct {
	Date  time.Time
	Label string
}

// easterSunday uses the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// FrenchPublicHolidays returns the eleven jours feries of metropolitan
// France for the year: eight fixed dates plus the three derived from
// Easter Sunday.
func FrenchPublicHolidays(year int) []PublicHoliday {
	fixed := func(month time.Month, day int, label string) PublicHoliday {
		return PublicHoliday{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Label: label}
	}
	easter := easterSunday(year)

	return []PublicHoliday{
		fixed(time.January, 1, "Jour de l'an"),
		{Date: easter.AddDate(0, 0, 1), Label: "Lundi de Paques"},
		fixed(time.May, 1, "Fete du Travail"),
		fixed(time.May, 8, "Victoire 1945"),
		{Date: easter.AddDate(0, 0, 39), Label: "Ascension"},
		{Date: easter.AddDate(0, 0, 50), Label: "Lundi de Pentecote"},
		fixed(time.July, 14, "Fete nationale"),
		fixed(time.August, 15, "Assomption"),
		fixed(time.November, 1, "Toussaint"),
		fixed(time.November, 11, "Armistice 1918"),
		fixed(time.December, 25, "Noel"),
	}
}
