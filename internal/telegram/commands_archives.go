package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/shamash/internal/render"
)

// records builds a command over one required-argument archive search.
func records(name, arg, help, title, fallback string, search func(ctx context.Context, query string, limit int) []any) command {
	return command{
		usage:    arg,
		help:     help,
		title:    title,
		fallback: fallback,
		run: func(ctx context.Context, args string) render.Summary {
			if args == "" {
				return usage(name, arg)
			}
			return render.Records(title+": "+args, search(ctx, args, archiveLimit), fallback)
		},
	}
}

func (b *Bot) archiveCommands() map[string]command {
	nli := b.sources.NLI
	return map[string]command{
		"archives": {
			usage:    "<query>",
			help:     "Search the National Library of Israel",
			title:    "Archives",
			fallback: "No archive records found for your search.",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("archives", "<query>")
				}
				return render.Records("Archives: "+args, nli.Search(ctx, args, searchLimit), "No archive records found for your search.")
			},
		},
		"manuscripts": records("manuscripts", "<query>", "Search Hebrew manuscripts", "Hebrew Manuscripts",
			"No manuscripts found for your search.", nli.Manuscripts),
		"photos": records("photos", "<query>", "Search historical photographs", "Historical Photos",
			"No photos found for your search.", nli.Photographs),
		"maps": records("maps", "<place>", "Search historical maps", "Historical Maps",
			"No maps found for that place.", nli.Maps),
		"audio": records("audio", "<query>", "Search audio recordings", "Audio Recordings",
			"No recordings found for your search.", nli.Audio),
		"creator": records("creator", "<name>", "Find works by a creator", "Works by Creator",
			"No works found for that creator.", nli.ByCreator),
		"subject": records("subject", "<topic>", "Find works about a subject", "Works by Subject",
			"No works found for that subject.", nli.BySubject),
		"hebrewbooks": records("hebrewbooks", "<query>", "Search Hebrew-language books", "Hebrew Books",
			"No Hebrew books found for your search.",
			func(ctx context.Context, query string, limit int) []any {
				return nli.Books(ctx, query, "", limit)
			}),
		"jerusalem": {
			usage:    "[query]",
			help:     "Archive items about Jerusalem",
			title:    "Jerusalem Collection",
			fallback: "No Jerusalem items found.",
			run: func(ctx context.Context, args string) render.Summary {
				title := "Jerusalem Collection"
				if args != "" {
					title += ": " + args
				}
				return render.Records(title, nli.Jerusalem(ctx, args, archiveLimit), "No Jerusalem items found.")
			},
		},
		"era": {
			usage:    "<from year> <to year> [query]",
			help:     "Archive items dated within a range of years",
			title:    "Archives by Date",
			fallback: "No archive items found for those years.",
			run: func(ctx context.Context, args string) render.Summary {
				fields := strings.Fields(args)
				if len(fields) < 2 {
					return usage("era", "<from year> <to year> [query]")
				}
				from, errFrom := strconv.Atoi(fields[0])
				to, errTo := strconv.Atoi(fields[1])
				if errFrom != nil || errTo != nil || from > to {
					return usage("era", "<from year> <to year> [query]")
				}
				query := strings.Join(fields[2:], " ")
				title := fmt.Sprintf("Archives %d-%d", from, to)
				if query != "" {
					title += ": " + query
				}
				return render.Records(title, nli.ByDateRange(ctx, from, to, query, archiveLimit), "No archive items found for those years.")
			},
		},
		"treasure": {
			usage:    "[material type]",
			help:     "A random item from the archive",
			title:    "Archive Treasure",
			fallback: "The archive has no treasure to share right now.",
			run: func(ctx context.Context, args string) render.Summary {
				item, ok := nli.RandomItem(ctx, args, b.newRand())
				if !ok {
					return render.Fallback("Archive Treasure", "The archive has no treasure to share right now.")
				}
				return render.Records("Archive Treasure", []any{item}, "The archive has no treasure to share right now.")
			},
		},
	}
}
