package telegram

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lepinkainen/shamash/internal/render"
)

const (
	searchLimit  = 5
	archiveLimit = 3
)

type command struct {
	usage    string
	help     string
	title    string
	fallback string
	group    string
	run      func(ctx context.Context, args string) render.Summary
}

type commandGroup struct {
	name  string
	build func() map[string]command
}

// commandGroups lists the command sets in /help order.
func (b *Bot) commandGroups() []commandGroup {
	return []commandGroup{
		{"General", b.generalCommands},
		{"Texts", b.textCommands},
		{"Calendar", b.calendarCommands},
		{"Archives", b.archiveCommands},
		{"Chabad", b.chabadCommands},
		{"Library", b.libraryCommands},
		{"Calculators", b.calcCommands},
	}
}

func (b *Bot) commandTable() map[string]command {
	table := make(map[string]command)
	for _, g := range b.commandGroups() {
		for name, cmd := range g.build() {
			cmd.group = g.name
			table[name] = cmd
		}
	}
	return table
}

func (b *Bot) generalCommands() map[string]command {
	return map[string]command{
		"ping": {
			help:  "Check that the bot is online",
			title: "Shamash online",
			run:   b.ping,
		},
		"help": {
			usage: "[command]",
			help:  "List commands, or describe one",
			title: "Commands",
			run:   b.help,
		},
	}
}

func (b *Bot) textCommands() map[string]command {
	return map[string]command{
		"study": {
			usage:    "<reference>",
			help:     "Read a text from Sefaria, e.g. Genesis 1:1",
			title:    "Study",
			fallback: "Could not find that reference. Try something like Genesis 1:1.",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("study", "<reference>")
				}
				return render.Passage(b.sources.Sefaria.GetText(ctx, args))
			},
		},
		"search": {
			usage: "<query>",
			help:  "Full-text search across Sefaria",
			title: "Search",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("search", "<query>")
				}
				return render.SearchHits(args, b.sources.Sefaria.Search(ctx, args, searchLimit))
			},
		},
		"today": {
			help:     "Today's text from the study rotation",
			title:    "Today's text",
			fallback: "'Make your Torah study a fixed practice.' - Pirkei Avot 1:15",
			run: func(ctx context.Context, _ string) render.Summary {
				return render.Passage(b.sources.Sefaria.DailyText(ctx))
			},
		},
		"random": {
			usage: "[category]",
			help:  "A random text, optionally from a category",
			title: "Random text",
			run: func(ctx context.Context, args string) render.Summary {
				data, ok := b.sources.Sefaria.RandomText(ctx, args, b.newRand())
				if !ok {
					return render.Fallback("Torah Wisdom", "'Who is wise? One who learns from every person.' - Pirkei Avot 4:1")
				}
				return render.Passage(data, ok)
			},
		},
		"categories": {
			help:  "Sefaria text categories",
			title: "Sefaria Text Categories",
			run: func(ctx context.Context, _ string) render.Summary {
				return render.Categories("Sefaria Text Categories", b.sources.Sefaria.Categories(ctx))
			},
		},
	}
}

func (b *Bot) calendarCommands() map[string]command {
	return map[string]command{
		"shabbat": {
			usage: "[city]",
			help:  "Candle lighting and havdalah times",
			title: "Shabbat times",
			run: func(ctx context.Context, args string) render.Summary {
				return render.Shabbat(b.sources.Hebcal.Shabbat(ctx, args))
			},
		},
		"zmanim": {
			usage: "[city]",
			help:  "Today's halachic times",
			title: "Zmanim",
			run: func(ctx context.Context, args string) render.Summary {
				return render.Zmanim(b.sources.Hebcal.Zmanim(ctx, args, b.now()))
			},
		},
		"calendar": {
			help:  "Today's Hebrew date",
			title: "Jewish calendar",
			run: func(ctx context.Context, _ string) render.Summary {
				today := b.now()
				data, ok := b.sources.Hebcal.ConvertDate(ctx, today)
				return render.HebrewDate(today.Format("January 2, 2006"), data, ok)
			},
		},
		"holidays": {
			usage: "[year]",
			help:  "Jewish holidays of a year",
			title: "Jewish holidays",
			run: func(ctx context.Context, args string) render.Summary {
				year := 0
				if args != "" {
					y, err := strconv.Atoi(args)
					if err != nil {
						return usage("holidays", "[year]")
					}
					year = y
				}
				items, ok := b.sources.Hebcal.Holidays(ctx, year)
				return render.Holidays(year, items, ok)
			},
		},
		"daily": {
			help:  "This week's Torah portion",
			title: "This week's Torah reading",
			run: func(ctx context.Context, _ string) render.Summary {
				return render.TorahReading(b.sources.Hebcal.TorahReading(ctx, b.now()))
			},
		},
	}
}

func usage(name, args string) render.Summary {
	return render.Summary{Body: fmt.Sprintf("Usage: /%s %s", name, args)}
}

func (b *Bot) ping(context.Context, string) render.Summary {
	s := render.Summary{Title: "Shamash online", Body: "Ready for Jewish learning."}
	if len(b.names) > 0 {
		s.Fields = []render.Field{{Name: "Sources", Value: strings.Join(b.names, ", ")}}
	}
	return s
}

func (b *Bot) help(_ context.Context, args string) render.Summary {
	if args != "" {
		name := strings.ToLower(strings.TrimPrefix(args, "/"))
		cmd, ok := b.commands[name]
		if !ok {
			return render.Summary{Title: "Commands", Body: "Unknown command. Try /help."}
		}
		line := "/" + name
		if cmd.usage != "" {
			line += " " + cmd.usage
		}
		return render.Summary{Title: line, Body: cmd.help}
	}

	s := render.Summary{Title: "Commands", Footer: "Send /help <command> for details."}
	for _, g := range b.commandGroups() {
		var names []string
		for name, cmd := range b.commands {
			if cmd.group == g.name {
				names = append(names, "/"+name)
			}
		}
		sort.Strings(names)
		s.Fields = append(s.Fields, render.Field{Name: g.name, Value: strings.Join(names, " ")})
	}
	return s
}
