package telegram

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/render"
	"github.com/lepinkainen/shamash/internal/source"
	"github.com/lepinkainen/shamash/internal/sources"
	"github.com/lepinkainen/shamash/internal/testutil"
)

type stubQuerier struct {
	results map[string]any
	block   bool

	mu     sync.Mutex
	params map[string]source.Params
}

func (s *stubQuerier) Query(ctx context.Context, op string, params source.Params) (*normalize.Result, bool) {
	s.mu.Lock()
	if s.params == nil {
		s.params = make(map[string]source.Params)
	}
	s.params[op] = params
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, false
	}
	v, ok := s.results[op]
	if !ok {
		return nil, false
	}
	if res, isResult := v.(*normalize.Result); isResult {
		return res, true
	}
	return &normalize.Result{JSON: v}, true
}

func (s *stubQuerier) lastParams(op string) source.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params[op]
}

type sentMessage struct {
	chatID int64
	msg    render.Message
	ctxErr error
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingSender) Send(ctx context.Context, chatID int64, msg render.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{chatID: chatID, msg: msg, ctxErr: ctx.Err()})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

func (r *recordingSender) last(t *testing.T) sentMessage {
	t.Helper()
	msgs := r.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

type fixture struct {
	sefaria *stubQuerier
	hebcal  *stubQuerier
	nli     *stubQuerier
	chabad  *stubQuerier
	calc    *stubQuerier
	dicta   *stubQuerier
	sender  *recordingSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var books any
	require.NoError(t, json.Unmarshal(testutil.FixtureCatalogJSON(t), &books))

	return &fixture{
		sefaria: &stubQuerier{results: map[string]any{}},
		hebcal:  &stubQuerier{results: map[string]any{}},
		nli:     &stubQuerier{results: map[string]any{}},
		chabad:  &stubQuerier{results: map[string]any{}},
		calc:    &stubQuerier{results: map[string]any{}},
		dicta:   &stubQuerier{results: map[string]any{"books": books}},
		sender:  &recordingSender{},
	}
}

func (f *fixture) bot(opts ...Option) *Bot {
	set := &sources.Set{
		Sefaria:   sources.NewSefaria(f.sefaria),
		Hebcal:    sources.NewHebcal(f.hebcal),
		NLI:       sources.NewNLI(f.nli),
		Chabad:    sources.NewChabad(f.chabad),
		TorahCalc: sources.NewTorahCalc(f.calc),
		Dicta:     sources.NewDicta(f.dicta),
	}
	return New(set, f.sender, opts...)
}

func commandUpdate(id int, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i != -1 {
		cmdLen = i
	}
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
		},
	}
}

func TestStudyCommand(t *testing.T) {
	f := newFixture(t)
	f.sefaria.results["text"] = map[string]any{
		"ref":  "Genesis 1:1",
		"text": []any{"In the beginning", "second"},
		"he":   []any{"בְּרֵאשִׁית", "שני"},
	}

	f.bot().HandleUpdate(context.Background(), commandUpdate(1, "/study Genesis 1:1"))

	sent := f.sender.last(t)
	assert.Equal(t, int64(42), sent.chatID)
	assert.True(t, sent.msg.HTML)
	assert.Contains(t, sent.msg.Text, "<b>Genesis 1:1</b>")
	assert.Contains(t, sent.msg.Text, "In the beginning")
	assert.NotContains(t, sent.msg.Text, "second")
}

func TestCommandUsage(t *testing.T) {
	f := newFixture(t)
	b := f.bot()

	b.HandleUpdate(context.Background(), commandUpdate(1, "/study"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Usage: /study &lt;reference&gt;")

	b.HandleUpdate(context.Background(), commandUpdate(2, "/holidays next"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Usage: /holidays [year]")

	b.HandleUpdate(context.Background(), commandUpdate(3, "/gematria abc"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Usage: /gematria")

	for i, text := range []string{
		"/maps", "/era 1900 1800", "/era 1900", "/convert length amah", "/charts length amah many",
		"/calc", "/author", "/period 1800", "/hebrewdate tomorrow", "/gregorian 5785 Nisan x",
		"/hachama soon", "/articles",
	} {
		b.HandleUpdate(context.Background(), commandUpdate(10+i, text))
		name := strings.Fields(text)[0]
		assert.Contains(t, f.sender.last(t).msg.Text, "Usage: "+name, text)
	}
}

func TestDuplicateUpdatesAreIgnored(t *testing.T) {
	f := newFixture(t)
	b := f.bot()

	b.HandleUpdate(context.Background(), commandUpdate(7, "/ping"))
	b.HandleUpdate(context.Background(), commandUpdate(7, "/ping"))

	assert.Len(t, f.sender.messages(), 1)
}

func TestNonCommandsAreIgnored(t *testing.T) {
	f := newFixture(t)
	b := f.bot()

	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 1})
	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"}})

	assert.Empty(t, f.sender.messages())
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.bot().HandleUpdate(context.Background(), commandUpdate(1, "/translate shalom"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Unknown command")
}

func TestCommandTimeoutRendersFallback(t *testing.T) {
	f := newFixture(t)
	f.chabad.block = true
	b := f.bot(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	b.HandleUpdate(context.Background(), commandUpdate(1, "/wisdom"))

	assert.Less(t, time.Since(start), 2*time.Second)
	text := f.sender.last(t).msg.Text
	assert.Contains(t, text, "Daily Chassidic Wisdom")
	assert.Contains(t, text, "A little light dispels much darkness")
}

func TestGematriaCommand(t *testing.T) {
	f := newFixture(t)
	f.bot().HandleUpdate(context.Background(), commandUpdate(1, "/gematria שלום"))
	assert.Contains(t, f.sender.last(t).msg.Text, "376")
}

func TestBooksCommand(t *testing.T) {
	f := newFixture(t)
	f.bot().HandleUpdate(context.Background(), commandUpdate(1, "/books talmud"))

	text := f.sender.last(t).msg.Text
	assert.Contains(t, text, "Talmud Bavli Berakhot")
	assert.Contains(t, text, "Pnei Yehoshua on Talmud")
}

func TestArchivesCommand(t *testing.T) {
	f := newFixture(t)
	f.nli.results["search"] = []any{map[string]any{"title": "Jerusalem map", "description": "1880"}}

	f.bot().HandleUpdate(context.Background(), commandUpdate(1, "/manuscripts jerusalem"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Jerusalem map")
}

func TestCalendarUsesClock(t *testing.T) {
	f := newFixture(t)
	f.hebcal.results["converter"] = map[string]any{"hebrew": "י״ד בְּנִיסָן 5785"}
	now := func() time.Time { return time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC) }

	f.bot(WithClock(now)).HandleUpdate(context.Background(), commandUpdate(1, "/calendar"))

	text := f.sender.last(t).msg.Text
	assert.Contains(t, text, "April 12, 2025")
	assert.Contains(t, text, "5785")
}

func TestRandomFallback(t *testing.T) {
	f := newFixture(t)
	b := f.bot(WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }))

	b.HandleUpdate(context.Background(), commandUpdate(1, "/random"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Who is wise?")
}

func TestPingAndHelp(t *testing.T) {
	f := newFixture(t)
	b := f.bot(WithSourceNames([]string{"hebcal", "sefaria"}))

	b.HandleUpdate(context.Background(), commandUpdate(1, "/ping"))
	assert.Contains(t, f.sender.last(t).msg.Text, "hebcal, sefaria")

	b.HandleUpdate(context.Background(), commandUpdate(2, "/help"))
	text := f.sender.last(t).msg.Text
	for _, name := range []string{"study", "search", "archives", "shabbat", "calendar", "holidays", "gematria",
		"wisdom", "tanya", "manuscripts", "photos", "books", "random", "daily", "categories", "ping", "help",
		"zmanim", "maps", "hebrewbooks", "mitzvah", "parsha", "calc", "author", "chassidic", "responsa"} {
		assert.Contains(t, text, "/"+name, name)
	}
	for _, g := range b.commandGroups() {
		assert.Contains(t, text, "<b>"+g.name+":</b>", g.name)
	}
	assert.LessOrEqual(t, len([]rune(text)), render.MessageLimit)

	b.HandleUpdate(context.Background(), commandUpdate(3, "/help maps"))
	text = f.sender.last(t).msg.Text
	assert.Contains(t, text, "/maps &lt;place&gt;")
	assert.Contains(t, text, "Search historical maps")

	b.HandleUpdate(context.Background(), commandUpdate(4, "/help nosuch"))
	assert.Contains(t, f.sender.last(t).msg.Text, "Unknown command")
}

func TestEveryCommandHasAGroup(t *testing.T) {
	b := newFixture(t).bot()
	for name, cmd := range b.commands {
		assert.NotEmpty(t, cmd.group, name)
		assert.NotEmpty(t, cmd.help, name)
	}
}

func TestReplyOutlivesCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.bot().HandleUpdate(ctx, commandUpdate(1, "/ping"))

	sent := f.sender.last(t)
	assert.NoError(t, sent.ctxErr)
	assert.Contains(t, sent.msg.Text, "Shamash online")
}

func TestPostDaily(t *testing.T) {
	f := newFixture(t)
	f.sefaria.results["text"] = map[string]any{"ref": "Psalms 1:1", "text": []any{"Happy is the man"}}

	require.NoError(t, f.bot().PostDaily(context.Background(), 99))

	sent := f.sender.last(t)
	assert.Equal(t, int64(99), sent.chatID)
	assert.Contains(t, sent.msg.Text, "Happy is the man")
}

type fakeUpdates struct {
	ch      chan tgbotapi.Update
	cfg     tgbotapi.UpdateConfig
	stopped atomic.Bool
}

func (f *fakeUpdates) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.cfg = cfg
	return f.ch
}

func (f *fakeUpdates) StopReceivingUpdates() {
	f.stopped.Store(true)
}

func TestRunHandlesUpdatesUntilCancelled(t *testing.T) {
	f := newFixture(t)
	b := f.bot()
	updates := &fakeUpdates{ch: make(chan tgbotapi.Update, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, updates)
		close(done)
	}()

	updates.ch <- commandUpdate(1, "/ping")
	updates.ch <- commandUpdate(2, "/gematria חי")
	updates.ch <- commandUpdate(2, "/gematria חי")

	assert.Eventually(t, func() bool { return len(f.sender.messages()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, updates.stopped.Load())
	assert.Equal(t, pollTimeout, updates.cfg.Timeout)
	assert.Len(t, f.sender.messages(), 2)
}
