package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/shamash/internal/gematria"
	"github.com/lepinkainen/shamash/internal/render"
)

const calcFallback = "Try a biblical measurement or calculation question. " +
	"Common units: 1 Cubit ≈ 18 inches, 1 Tefach ≈ 3 inches, 1 Mil ≈ 0.6 miles, 1 Kor ≈ 220 liters."

func (b *Bot) calcCommands() map[string]command {
	calc := b.sources.TorahCalc
	return map[string]command{
		"gematria": {
			usage: "<hebrew text>",
			help:  "Standard gematria value",
			title: "Gematria",
			run: func(_ context.Context, args string) render.Summary {
				if !gematria.HasHebrew(args) {
					return usage("gematria", "<hebrew text>")
				}
				return render.Gematria(args, gematria.Value(args))
			},
		},
		"calc": {
			usage:    "<question>",
			help:     "Ask TorahCalc, e.g. 3 amot in meters",
			title:    "Torah Calculation",
			fallback: calcFallback,
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("calc", "<question>")
				}
				res, ok := calc.Calculate(ctx, args)
				return render.Calculation("Torah Calculation", args, res, ok, calcFallback)
			},
		},
		"convert": {
			usage:    "<type> <from> <to> <amount> [opinion]",
			help:     "Convert between biblical and modern units",
			title:    "Unit Conversion",
			fallback: calcFallback,
			run: func(ctx context.Context, args string) render.Summary {
				fields := strings.Fields(args)
				if len(fields) < 4 || len(fields) > 5 {
					return usage("convert", "<type> <from> <to> <amount> [opinion]")
				}
				amount, err := strconv.ParseFloat(fields[3], 64)
				if err != nil {
					return usage("convert", "<type> <from> <to> <amount> [opinion]")
				}
				opinion := ""
				if len(fields) == 5 {
					opinion = fields[4]
				}
				res, ok := calc.ConvertUnits(ctx, fields[0], fields[1], fields[2], amount, opinion)
				return render.Calculation("Unit Conversion", args, res, ok, calcFallback)
			},
		},
		"charts": {
			usage:    "<type> <from> <amount> [opinion]",
			help:     "Convert an amount to every compatible unit",
			title:    "Unit Chart",
			fallback: calcFallback,
			run: func(ctx context.Context, args string) render.Summary {
				fields := strings.Fields(args)
				if len(fields) < 3 || len(fields) > 4 {
					return usage("charts", "<type> <from> <amount> [opinion]")
				}
				amount, err := strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return usage("charts", "<type> <from> <amount> [opinion]")
				}
				opinion := ""
				if len(fields) == 4 {
					opinion = fields[3]
				}
				res, ok := calc.UnitCharts(ctx, fields[0], fields[1], amount, opinion)
				return render.Calculation("Unit Chart", args, res, ok, calcFallback)
			},
		},
		"learning": {
			help:     "Today's learning schedules",
			title:    "Daily Learning",
			fallback: "Daf Yomi, Mishnah Yomit and Rambam schedules are unavailable right now.",
			run: func(ctx context.Context, _ string) render.Summary {
				res, ok := calc.DailyLearning(ctx, b.now())
				return render.Calculation("Daily Learning", "", res, ok,
					"Daf Yomi, Mishnah Yomit and Rambam schedules are unavailable right now.")
			},
		},
		"hebrewdate": {
			usage:    "[YYYY-MM-DD]",
			help:     "Convert a Gregorian date to the Hebrew calendar",
			title:    "Hebrew Date",
			fallback: "Date conversion is unavailable right now.",
			run: func(ctx context.Context, args string) render.Summary {
				date := b.now()
				if args != "" {
					d, err := time.Parse(time.DateOnly, args)
					if err != nil {
						return usage("hebrewdate", "[YYYY-MM-DD]")
					}
					date = d
				}
				res, ok := calc.GregorianToHebrew(ctx, date, false)
				return render.Calculation("Hebrew Date", date.Format(time.DateOnly), res, ok, "Date conversion is unavailable right now.")
			},
		},
		"gregorian": {
			usage:    "<year> <month> <day>",
			help:     "Convert a Hebrew date, e.g. 5785 Nisan 15",
			title:    "Gregorian Date",
			fallback: "Date conversion is unavailable right now.",
			run: func(ctx context.Context, args string) render.Summary {
				fields := strings.Fields(args)
				if len(fields) < 3 {
					return usage("gregorian", "<year> <month> <day>")
				}
				year, errYear := strconv.Atoi(fields[0])
				day, errDay := strconv.Atoi(fields[len(fields)-1])
				if errYear != nil || errDay != nil {
					return usage("gregorian", "<year> <month> <day>")
				}
				month := strings.Join(fields[1:len(fields)-1], " ")
				res, ok := calc.HebrewToGregorian(ctx, year, month, day)
				return render.Calculation("Gregorian Date", args, res, ok, "Date conversion is unavailable right now.")
			},
		},
		"hachama": {
			usage:    "[year]",
			help:     "When the blessing of the sun is next said",
			title:    "Birkat Hachama",
			fallback: "Birkat Hachama is said every 28 years; the next is in 2037.",
			run: func(ctx context.Context, args string) render.Summary {
				year := 0
				if args != "" {
					y, err := strconv.Atoi(args)
					if err != nil {
						return usage("hachama", "[year]")
					}
					year = y
				}
				res, ok := calc.BirkatHachama(ctx, year)
				return render.Calculation("Birkat Hachama", "", res, ok, "Birkat Hachama is said every 28 years; the next is in 2037.")
			},
		},
	}
}
