package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/shamash/internal/catalog"
	"github.com/lepinkainen/shamash/internal/render"
)

// shelf builds a command listing one predefined slice of the catalog.
func shelf(help, title string, list func(ctx context.Context, limit int) []catalog.Entry) command {
	return command{
		help:  help,
		title: title,
		run: func(ctx context.Context, _ string) render.Summary {
			return render.Books(title, list(ctx, searchLimit))
		},
	}
}

func (b *Bot) libraryCommands() map[string]command {
	dicta := b.sources.Dicta
	return map[string]command{
		"books": {
			usage: "<query>",
			help:  "Search the Dicta book library",
			title: "Jewish Books",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("books", "<query>")
				}
				return render.Books("Jewish Books: "+args, dicta.Search(ctx, args, "", "", searchLimit))
			},
		},
		"author": {
			usage: "<name>",
			help:  "Books by an author",
			title: "Books by Author",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("author", "<name>")
				}
				return render.Books("Books by "+args, dicta.ByAuthor(ctx, args, searchLimit))
			},
		},
		"period": {
			usage: "<from year> <to year>",
			help:  "Books printed within a range of years",
			title: "Books by Period",
			run: func(ctx context.Context, args string) render.Summary {
				fields := strings.Fields(args)
				if len(fields) != 2 {
					return usage("period", "<from year> <to year>")
				}
				from, errFrom := strconv.Atoi(fields[0])
				to, errTo := strconv.Atoi(fields[1])
				if errFrom != nil || errTo != nil || from > to {
					return usage("period", "<from year> <to year>")
				}
				return render.Books(fmt.Sprintf("Books printed %d-%d", from, to), dicta.ByPeriod(ctx, from, to, searchLimit))
			},
		},
		"randombook": {
			usage: "[category]",
			help:  "A random book, optionally from a category",
			title: "Random Book",
			run: func(ctx context.Context, args string) render.Summary {
				e, ok := dicta.Random(ctx, args, b.newRand())
				return render.Book("Random Book", e, ok)
			},
		},
		"bookcategories": {
			help:  "Library categories with book counts",
			title: "Library categories",
			run: func(ctx context.Context, _ string) render.Summary {
				return render.BookCategories(dicta.Categories(ctx))
			},
		},
		"librarystats": {
			help:  "Library statistics",
			title: "Library statistics",
			run: func(ctx context.Context, _ string) render.Summary {
				return render.Stats(dicta.Statistics(ctx))
			},
		},
		"chassidic":          shelf("Chassidic books", "Chassidic Books", dicta.Chassidic),
		"responsa":           shelf("Responsa literature", "Responsa", dicta.Responsa),
		"talmudcommentaries": shelf("Commentaries on the Talmud", "Talmud Commentaries", dicta.TalmudCommentaries),
		"biblecommentaries":  shelf("Commentaries on the Bible", "Biblical Commentaries", dicta.BiblicalCommentaries),
		"halacha":            shelf("Books of Jewish law", "Halachic Books", dicta.HalachicBooks),
	}
}
