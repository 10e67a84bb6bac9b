package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shamash/internal/catalog"
	"github.com/lepinkainen/shamash/internal/config"
	"github.com/lepinkainen/shamash/internal/gematria"
	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/render"
	"github.com/lepinkainen/shamash/internal/scheduler"
	"github.com/lepinkainen/shamash/internal/source"
	"github.com/lepinkainen/shamash/internal/sources"
	"github.com/lepinkainen/shamash/internal/telegram"
	"github.com/lepinkainen/shamash/internal/tui"
)

var (
	stdout     io.Writer = os.Stdout
	newBotAPI            = tgbotapi.NewBotAPI
	selectBook           = tui.SelectBook
	newRand              = func() *rand.Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

const (
	appName        = "shamash"
	appDescription = "Jewish texts, calendars and library catalogs from the terminal or a Telegram bot."
)

// CLI represents the complete command structure for the shamash application
type CLI struct {
	Debug   bool          `help:"Enable debug logging"`
	Timeout time.Duration `help:"Time limit for one command (e.g., 8s); overrides CommandTimeout from config"`

	Bot      BotCmd      `cmd:"" name:"run" help:"Start the Telegram bot"`
	Query    QueryCmd    `cmd:"" help:"Call a source operation and print the normalized result as JSON"`
	Sources  SourcesCmd  `cmd:"" help:"List configured sources and their operations"`
	Books    BooksCmd    `cmd:"" help:"Explore the Dicta library catalog"`
	Torah    TorahCmd    `cmd:"" help:"Ask the TorahCalc calculators"`
	Gematria GematriaCmd `cmd:"" help:"Compute the gematria of Hebrew text"`
}

// BotCmd represents the run command
type BotCmd struct{}

// QueryCmd represents the query command
type QueryCmd struct {
	Source    string   `arg:"" help:"Source name (see the sources command)"`
	Operation string   `arg:"" help:"Operation name"`
	Params    []string `arg:"" optional:"" help:"Call parameters as key=value"`
}

// SourcesCmd represents the sources command
type SourcesCmd struct{}

// BooksCmd represents the books command and its subcommands
type BooksCmd struct {
	Search     BooksSearchCmd     `cmd:"" help:"Search books by title or author"`
	Random     BooksRandomCmd     `cmd:"" help:"Pick a random book"`
	Categories BooksCategoriesCmd `cmd:"" help:"List library categories"`
	Stats      BooksStatsCmd      `cmd:"" help:"Show library statistics"`
	Period     BooksPeriodCmd     `cmd:"" help:"List books printed between two years"`
	Browse     BooksBrowseCmd     `cmd:"" help:"Pick a book interactively"`
	Author     BooksAuthorCmd     `cmd:"" help:"List books by an author"`
	Chassidic  BooksChassidicCmd  `cmd:"" help:"List Chassidic works"`
	Responsa   BooksResponsaCmd   `cmd:"" help:"List responsa literature"`
	Talmud     BooksTalmudCmd     `cmd:"" help:"List commentaries on the Talmud"`
	Bible      BooksBibleCmd      `cmd:"" help:"List commentaries on the Bible"`
	Halacha    BooksHalachaCmd    `cmd:"" help:"List works of Jewish law"`
}

// BooksSearchCmd represents the books search command
type BooksSearchCmd struct {
	Query    string `arg:"" optional:"" help:"Text to find in titles or authors"`
	Category string `help:"Only books in this category"`
	Author   string `help:"Only books by this author"`
	Limit    int    `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksRandomCmd represents the books random command
type BooksRandomCmd struct {
	Category string `help:"Pick from this category only"`
}

// BooksCategoriesCmd represents the books categories command
type BooksCategoriesCmd struct{}

// BooksStatsCmd represents the books stats command
type BooksStatsCmd struct{}

// BooksPeriodCmd represents the books period command
type BooksPeriodCmd struct {
	From  int `help:"Earliest print year" default:"1800"`
	To    int `help:"Latest print year" default:"2000"`
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksBrowseCmd represents the books browse command
type BooksBrowseCmd struct {
	Query    string `arg:"" optional:"" help:"Text to find in titles or authors"`
	Category string `help:"Only books in this category"`
	Limit    int    `short:"n" help:"Maximum number of books to list" default:"50"`
}

// BooksAuthorCmd represents the books author command
type BooksAuthorCmd struct {
	Author []string `arg:"" help:"Author name, Hebrew or English"`
	Limit  int      `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksChassidicCmd represents the books chassidic command
type BooksChassidicCmd struct {
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksResponsaCmd represents the books responsa command
type BooksResponsaCmd struct {
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksTalmudCmd represents the books talmud command
type BooksTalmudCmd struct {
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksBibleCmd represents the books bible command
type BooksBibleCmd struct {
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// BooksHalachaCmd represents the books halacha command
type BooksHalachaCmd struct {
	Limit int `short:"n" help:"Maximum number of books" default:"10"`
}

// TorahCmd represents the torah command and its subcommands
type TorahCmd struct {
	Ask           TorahAskCmd           `cmd:"" help:"Ask a free-form question, e.g. 3 amot in meters"`
	Convert       TorahConvertCmd       `cmd:"" help:"Convert between biblical and modern units"`
	Charts        TorahChartsCmd        `cmd:"" help:"Convert an amount to every compatible unit"`
	Learning      TorahLearningCmd      `cmd:"" help:"Show the daily learning schedules"`
	HebrewDate    TorahHebrewDateCmd    `cmd:"" help:"Convert a Gregorian date to the Hebrew calendar"`
	GregorianDate TorahGregorianDateCmd `cmd:"" help:"Convert a Hebrew date to the Gregorian calendar"`
	Hachama       TorahHachamaCmd       `cmd:"" help:"Find the next Birkat Hachama"`
	Gematria      TorahGematriaCmd      `cmd:"" help:"Ask the calculator for a gematria value"`
	Zmanim        TorahZmanimCmd        `cmd:"" help:"Ask the calculator for halachic times"`
}

// TorahAskCmd represents the torah ask command
type TorahAskCmd struct {
	Question []string `arg:"" help:"Question text"`
}

// TorahConvertCmd represents the torah convert command
type TorahConvertCmd struct {
	Type    string  `arg:"" help:"Unit type (length, area, volume, weight, time, coins)"`
	From    string  `arg:"" help:"Source unit"`
	To      string  `arg:"" help:"Target unit"`
	Amount  float64 `arg:"" help:"Amount to convert"`
	Opinion string  `help:"Halachic opinion for the unit sizes"`
}

// TorahChartsCmd represents the torah charts command
type TorahChartsCmd struct {
	Type    string  `arg:"" help:"Unit type (length, area, volume, weight, time, coins)"`
	From    string  `arg:"" help:"Source unit"`
	Amount  float64 `arg:"" optional:"" help:"Amount to convert" default:"1"`
	Opinion string  `help:"Halachic opinion for the unit sizes"`
}

// TorahLearningCmd represents the torah learning command
type TorahLearningCmd struct {
	Date string `help:"Date as YYYY-MM-DD (default today)"`
}

// TorahHebrewDateCmd represents the torah hebrew-date command
type TorahHebrewDateCmd struct {
	Date        string `help:"Date as YYYY-MM-DD (default today)"`
	AfterSunset bool   `help:"The time is after sunset, so the Hebrew day has advanced"`
}

// TorahGregorianDateCmd represents the torah gregorian-date command
type TorahGregorianDateCmd struct {
	Year  int    `arg:"" help:"Hebrew year, e.g. 5785"`
	Month string `arg:"" help:"Hebrew month name, e.g. Nisan"`
	Day   int    `arg:"" help:"Day of the month"`
}

// TorahHachamaCmd represents the torah hachama command
type TorahHachamaCmd struct {
	Year int `arg:"" optional:"" help:"Find the first blessing after this year"`
}

// TorahGematriaCmd represents the torah gematria command
type TorahGematriaCmd struct {
	Text []string `arg:"" help:"Hebrew word or phrase"`
}

// TorahZmanimCmd represents the torah zmanim command
type TorahZmanimCmd struct {
	Location string `arg:"" optional:"" help:"City name (default New York)"`
	Date     string `help:"Date in any form the calculator understands"`
}

// GematriaCmd represents the gematria command
type GematriaCmd struct {
	Text []string `arg:"" help:"Hebrew word or phrase"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
	)

	initLogging(cli.Debug)
	if err := initConfig(); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() error {
	config.SetDefaults()

	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"TelegramToken":   "TELEGRAM_TOKEN",
		"NLIAPIKey":       "NLI_API_KEY",
		"ChabadPublicKey": "CHABAD_PUBLIC_KEY",
		"ChabadSecretKey": "CHABAD_SECRET_KEY",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "key", key, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		slog.Debug("Config file not found, using defaults and environment")
	}

	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) {
	config.SetCommandTimeout(cli.Timeout)
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func buildRegistry() (*source.Registry, error) {
	tables, err := source.DefaultTables()
	if err != nil {
		return nil, fmt.Errorf("load source tables: %w", err)
	}
	return source.NewRegistry(
		config.ApplySourceOverrides(tables),
		config.Credentials(),
		source.WithLogger(slog.Default()),
	)
}

func buildSources() (*sources.Set, *source.Registry, error) {
	registry, err := buildRegistry()
	if err != nil {
		return nil, nil, err
	}
	set, err := sources.NewSet(registry)
	if err != nil {
		registry.Close()
		return nil, nil, err
	}
	return set, registry, nil
}

// withSources runs fn under the command timeout and releases the clients afterwards.
func withSources(fn func(ctx context.Context, set *sources.Set) error) error {
	set, registry, err := buildSources()
	if err != nil {
		return err
	}
	defer registry.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
	defer cancel()
	return fn(ctx, set)
}

func printSummary(s render.Summary) error {
	if s.Title != "" {
		if _, err := fmt.Fprintln(stdout, titleStyle.Render(s.Title)); err != nil {
			return err
		}
		s.Title = ""
	}
	if s.Empty() {
		return nil
	}
	_, err := fmt.Fprintln(stdout, s.Text())
	return err
}

// Run methods for each command

func (b *BotCmd) Run() error {
	if config.TelegramToken == "" {
		return errors.New("telegram token is required (set TELEGRAM_TOKEN or TelegramToken in config)")
	}

	set, registry, err := buildSources()
	if err != nil {
		return err
	}
	defer registry.Close()

	api, err := newBotAPI(config.TelegramToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("Authorized on account", "username", api.Self.UserName)

	loc := config.Location()
	bot := telegram.New(set, telegram.NewAPISender(api),
		telegram.WithTimeout(config.CommandTimeout),
		telegram.WithLogger(slog.Default()),
		telegram.WithClock(func() time.Time { return time.Now().In(loc) }),
		telegram.WithSourceNames(registry.Names()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.DailyPostSpec != "" && config.DailyPostChatID != 0 {
		chatID := config.DailyPostChatID
		sched, err := scheduler.New(config.DailyPostSpec, loc, func() {
			if err := bot.PostDaily(ctx, chatID); err != nil {
				slog.Error("Daily post failed", "chat_id", chatID, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule daily post: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		slog.Info("Daily post scheduled", "spec", config.DailyPostSpec, "timezone", loc.String(), "next", sched.Next())
	}

	slog.Info("Bot started", "sources", len(registry.Names()), "timeout", config.CommandTimeout)
	bot.Run(ctx, api)
	slog.Info("Bot stopped")
	return nil
}

func (q *QueryCmd) Run() error {
	params, err := parseParams(q.Params)
	if err != nil {
		return err
	}

	registry, err := buildRegistry()
	if err != nil {
		return err
	}
	defer registry.Close()

	client, ok := registry.Get(q.Source)
	if !ok {
		return fmt.Errorf("unknown source %q (available: %s)", q.Source, strings.Join(registry.Names(), ", "))
	}
	if _, ok := client.Config().Endpoints[q.Operation]; !ok {
		return fmt.Errorf("source %s has no operation %q (available: %s)",
			q.Source, q.Operation, strings.Join(client.Config().Operations(), ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
	defer cancel()

	res, ok := client.Query(ctx, q.Operation, params)
	if !ok {
		return fmt.Errorf("%s %s returned no result", q.Source, q.Operation)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if res.IsJSON() {
		return enc.Encode(res.JSON)
	}
	return enc.Encode(res.Fields)
}

func parseParams(args []string) (source.Params, error) {
	params := source.Params{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		params[strings.TrimSpace(key)] = value
	}
	return params, nil
}

func (s *SourcesCmd) Run() error {
	tables, err := source.DefaultTables()
	if err != nil {
		return fmt.Errorf("load source tables: %w", err)
	}
	tables = config.ApplySourceOverrides(tables)

	registry, err := source.NewRegistry(tables, config.Credentials())
	if err != nil {
		return err
	}
	defer registry.Close()

	for _, name := range registry.Names() {
		client, _ := registry.Get(name)
		cfg := client.Config()
		auth := cfg.Auth
		if auth == "" {
			auth = "none"
		}
		if _, err := fmt.Fprintf(stdout, "%s  %s  (every %s, auth %s)\n  %s\n",
			titleStyle.Render(name), cfg.BaseURL, cfg.Interval, auth, strings.Join(cfg.Operations(), ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (b *BooksSearchCmd) Run() error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		books := set.Dicta.Search(ctx, b.Query, b.Category, b.Author, b.Limit)
		return printSummary(render.Books(fmt.Sprintf("Books matching %q", b.Query), books))
	})
}

func (b *BooksRandomCmd) Run() error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		book, ok := set.Dicta.Random(ctx, b.Category, newRand())
		return printSummary(render.Book("Random book", book, ok))
	})
}

func (b *BooksCategoriesCmd) Run() error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		return printSummary(render.BookCategories(set.Dicta.Categories(ctx)))
	})
}

func (b *BooksStatsCmd) Run() error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		return printSummary(render.Stats(set.Dicta.Statistics(ctx)))
	})
}

func (b *BooksPeriodCmd) Run() error {
	if b.From > b.To {
		return fmt.Errorf("invalid period %d-%d", b.From, b.To)
	}
	return withSources(func(ctx context.Context, set *sources.Set) error {
		books := set.Dicta.ByPeriod(ctx, b.From, b.To, b.Limit)
		return printSummary(render.Books(fmt.Sprintf("Books printed %d-%d", b.From, b.To), books))
	})
}

func (b *BooksBrowseCmd) Run() error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		books := set.Dicta.Search(ctx, b.Query, b.Category, "", b.Limit)
		if len(books) == 0 {
			return printSummary(render.Books("Books", nil))
		}

		res, err := selectBook(b.Query, books)
		if err != nil {
			return fmt.Errorf("book selection: %w", err)
		}
		if res.Action != tui.ActionSelected || res.Selection == nil {
			slog.Info("No book selected")
			return nil
		}
		return printSummary(render.Book("Selected book", *res.Selection, true))
	})
}

func (b *BooksAuthorCmd) Run() error {
	author := strings.Join(b.Author, " ")
	return withSources(func(ctx context.Context, set *sources.Set) error {
		return printSummary(render.Books("Books by "+author, set.Dicta.ByAuthor(ctx, author, b.Limit)))
	})
}

// printShelf lists one predefined slice of the catalog.
func printShelf(title string, limit int, list func(*sources.Dicta, context.Context, int) []catalog.Entry) error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		return printSummary(render.Books(title, list(set.Dicta, ctx, limit)))
	})
}

func (b *BooksChassidicCmd) Run() error {
	return printShelf("Chassidic books", b.Limit, (*sources.Dicta).Chassidic)
}

func (b *BooksResponsaCmd) Run() error {
	return printShelf("Responsa", b.Limit, (*sources.Dicta).Responsa)
}

func (b *BooksTalmudCmd) Run() error {
	return printShelf("Talmud commentaries", b.Limit, (*sources.Dicta).TalmudCommentaries)
}

func (b *BooksBibleCmd) Run() error {
	return printShelf("Biblical commentaries", b.Limit, (*sources.Dicta).BiblicalCommentaries)
}

func (b *BooksHalachaCmd) Run() error {
	return printShelf("Halachic books", b.Limit, (*sources.Dicta).HalachicBooks)
}

const calcFallback = "No answer. Try a biblical measurement or calculation question."

// withCalculator runs one TorahCalc call and prints its answer.
func withCalculator(title, question string, call func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool)) error {
	return withSources(func(ctx context.Context, set *sources.Set) error {
		res, ok := call(ctx, set.TorahCalc)
		return printSummary(render.Calculation(title, question, res, ok, calcFallback))
	})
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func (t *TorahAskCmd) Run() error {
	question := strings.Join(t.Question, " ")
	return withCalculator("Torah Calculation", question, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.Calculate(ctx, question)
	})
}

func (t *TorahConvertCmd) Run() error {
	question := fmt.Sprintf("%s %s in %s", strconv.FormatFloat(t.Amount, 'f', -1, 64), t.From, t.To)
	return withCalculator("Unit Conversion", question, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.ConvertUnits(ctx, t.Type, t.From, t.To, t.Amount, t.Opinion)
	})
}

func (t *TorahChartsCmd) Run() error {
	question := fmt.Sprintf("%s %s", strconv.FormatFloat(t.Amount, 'f', -1, 64), t.From)
	return withCalculator("Unit Chart", question, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.UnitCharts(ctx, t.Type, t.From, t.Amount, t.Opinion)
	})
}

func (t *TorahLearningCmd) Run() error {
	date, err := parseDate(t.Date)
	if err != nil {
		return err
	}
	return withCalculator("Daily Learning", t.Date, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.DailyLearning(ctx, date)
	})
}

func (t *TorahHebrewDateCmd) Run() error {
	date, err := parseDate(t.Date)
	if err != nil {
		return err
	}
	return withCalculator("Hebrew Date", t.Date, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.GregorianToHebrew(ctx, date, t.AfterSunset)
	})
}

func (t *TorahGregorianDateCmd) Run() error {
	question := fmt.Sprintf("%d %s %d", t.Day, t.Month, t.Year)
	return withCalculator("Gregorian Date", question, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.HebrewToGregorian(ctx, t.Year, t.Month, t.Day)
	})
}

func (t *TorahHachamaCmd) Run() error {
	return withCalculator("Birkat Hachama", "", func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.BirkatHachama(ctx, t.Year)
	})
}

func (t *TorahGematriaCmd) Run() error {
	text := strings.Join(t.Text, " ")
	return withCalculator("Gematria", text, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.Gematria(ctx, text)
	})
}

func (t *TorahZmanimCmd) Run() error {
	return withCalculator("Zmanim", t.Location, func(ctx context.Context, calc *sources.TorahCalc) (*normalize.Result, bool) {
		return calc.Zmanim(ctx, t.Location, t.Date)
	})
}

func (g *GematriaCmd) Run() error {
	text := strings.Join(g.Text, " ")
	if !gematria.HasHebrew(text) {
		return fmt.Errorf("no Hebrew letters in %q", text)
	}
	s := render.Gematria(text, gematria.Value(text))
	s.Fields = append(s.Fields, render.Field{Name: "Gadol Value", Value: fmt.Sprint(gematria.GadolValue(text))})
	return printSummary(s)
}
