package telegram

import (
	"context"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/render"
)

// page builds a command that renders one fetched page.
func page(help, title, fallback string, fetch func(ctx context.Context) (*normalize.Result, bool)) command {
	return command{
		help:     help,
		title:    title,
		fallback: fallback,
		run: func(ctx context.Context, _ string) render.Summary {
			res, ok := fetch(ctx)
			return render.Page(title, res, ok, fallback)
		},
	}
}

// filteredPage is page with an optional argument that narrows the fetch.
func filteredPage(arg, help, title, fallback string, fetch func(ctx context.Context, arg string) (*normalize.Result, bool)) command {
	return command{
		usage:    arg,
		help:     help,
		title:    title,
		fallback: fallback,
		run: func(ctx context.Context, args string) render.Summary {
			t := title
			if args != "" {
				t += ": " + args
			}
			res, ok := fetch(ctx, args)
			return render.Page(t, res, ok, fallback)
		},
	}
}

func (b *Bot) chabadCommands() map[string]command {
	chabad := b.sources.Chabad
	return map[string]command{
		"wisdom": page("Daily Chassidic wisdom from Chabad.org", "Daily Chassidic Wisdom",
			"'A little light dispels much darkness.' - Tanya", chabad.DailyWisdom),
		"tanya": page("Today's Tanya lesson", "Today's Tanya Lesson",
			"Study today's Tanya lesson for spiritual insights.", chabad.Tanya),
		"mitzvah": page("Today's mitzvah", "Daily Mitzvah",
			"Every mitzvah is a connection. Do one more today.", chabad.DailyMitzvah),
		"dailystudy": page("Today's Chumash, Tanya and Rambam study", "Daily Study",
			"Learn a little every day: Chumash, Tanya and Rambam.", chabad.DailyStudy),
		"stories": page("Chassidic stories", "Chassidic Stories",
			"Tell a story of the righteous and bring its light home.", chabad.Stories),
		"parsha": page("This week's Torah portion from Chabad.org", "Weekly Parsha",
			"Live with the times: study this week's Torah portion.", chabad.Parsha),
		"chabadcalendar": page("The Chassidic calendar", "Chassidic Calendar",
			"Check the Chassidic calendar for today's events.", chabad.Calendar),
		"articles": {
			usage:    "<query>",
			help:     "Search Chabad.org articles",
			title:    "Chabad Articles",
			fallback: "No articles found for your search.",
			run: func(ctx context.Context, args string) render.Summary {
				if args == "" {
					return usage("articles", "<query>")
				}
				res, ok := chabad.Search(ctx, args, searchLimit)
				return render.Page("Chabad Articles: "+args, res, ok, "No articles found for your search.")
			},
		},
		"centers": filteredPage("[location]", "Find a Chabad center", "Chabad Centers",
			"Visit chabad.org/centers to find a center near you.", chabad.Centers),
		"library": filteredPage("[topic]", "Learning resources", "Chabad Library",
			"Browse the Chabad.org library for learning resources.", chabad.Library),
		"media": filteredPage("[video|audio]", "Classes and multimedia", "Chabad Multimedia",
			"Browse Chabad.org for video and audio classes.", chabad.Multimedia),
		"askrabbi": filteredPage("[category]", "Answers from Ask the Rabbi", "Ask the Rabbi",
			"Questions can be sent to Ask the Rabbi on Chabad.org.", chabad.AskTheRabbi),
		"kosher": filteredPage("[query]", "Kosher information", "Kosher Information",
			"Look for a reliable kosher certification.", chabad.Kosher),
	}
}
