package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	batches [][]tgbotapi.Update
	offsets []int
	onEmpty func()
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offsets = append(b.offsets, cfg.Offset)
	if len(b.batches) == 0 {
		if b.onEmpty != nil {
			b.onEmpty()
		}
		return nil, nil
	}
	next := b.batches[0]
	b.batches = b.batches[1:]
	return next, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.sent))
	for _, m := range b.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeCalc struct {
	mu  sync.Mutex
	got []types.CalculationRequest
	ids []string
	res types.RecommendationResult
	err error
}

func (f *fakeCalc) Calculate(ctx context.Context, req types.CalculationRequest) (types.RecommendationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, req)
	f.ids = append(f.ids, advisor.RequestID(ctx))
	return f.res, f.err
}

func command(updateID int, chatID int64, text, cmd string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			Chat:     &tgbotapi.Chat{ID: chatID},
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
		},
	}
}

func plain(updateID int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text},
	}
}

func realisticResult() types.RecommendationResult {
	return types.RecommendationResult{
		ValidationMessage:      "Target 6 ton realistis.",
		IsRealistic:            true,
		KujangRecommendations:  []types.Recommendation{{ProductName: "Urea Kujang", DosageKg: 500, Reason: "Nitrogen"}},
		GenericRecommendations: []types.Recommendation{},
	}
}

func TestHandleUpdate_Start(t *testing.T) {
	bot := &fakeBot{}
	r := &Router{Bot: bot, Calc: &fakeCalc{}}

	r.HandleUpdate(context.Background(), command(1, 42, "/start", "/start"))

	texts := bot.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Selamat datang")
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
}

func TestHandleUpdate_Hitung(t *testing.T) {
	bot := &fakeBot{}
	calc := &fakeCalc{res: realisticResult()}
	r := &Router{Bot: bot, Calc: calc}

	r.HandleUpdate(context.Background(), command(7, 42, "/hitung padi 2 6", "/hitung"))

	require.Len(t, calc.got, 1)
	assert.Equal(t, types.CalculationRequest{Crop: "padi", LandSize: 2, Target: 6}, calc.got[0])
	assert.Equal(t, "tg-42-7", calc.ids[0])

	texts := bot.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Sedang menghitung")
	assert.Contains(t, texts[1], "✅ Target realistis")
	assert.Contains(t, texts[1], "• Urea Kujang: 500 kg (Nitrogen)")
	assert.Contains(t, texts[1], "• (tidak ada)")
}

func TestHandleUpdate_PlainText(t *testing.T) {
	bot := &fakeBot{}
	calc := &fakeCalc{res: realisticResult()}
	r := &Router{Bot: bot, Calc: calc}

	r.HandleUpdate(context.Background(), plain(3, 1, "jagung manis 1,5 8"))

	require.Len(t, calc.got, 1)
	assert.Equal(t, types.CalculationRequest{Crop: "jagung manis", LandSize: 1.5, Target: 8}, calc.got[0])
}

func TestHandleUpdate_InvalidInput(t *testing.T) {
	bot := &fakeBot{}
	calc := &fakeCalc{}
	r := &Router{Bot: bot, Calc: calc}

	r.HandleUpdate(context.Background(), command(1, 1, "/hitung padi", "/hitung"))
	r.HandleUpdate(context.Background(), plain(2, 1, "halo pak"))

	assert.Empty(t, calc.got)
	for _, text := range bot.texts() {
		assert.Contains(t, text, "Format data input tidak valid.")
	}
}

func TestHandleUpdate_CalculationError(t *testing.T) {
	bot := &fakeBot{}
	calc := &fakeCalc{err: &advisor.Error{Kind: advisor.KindNotReady, Message: "AI belum siap."}}
	r := &Router{Bot: bot, Calc: calc}

	r.HandleUpdate(context.Background(), plain(1, 1, "padi 2 6"))

	texts := bot.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "Terjadi kesalahan sistem: AI belum siap.", texts[1])
}

func TestHandleUpdate_UnknownCommandAndEmpty(t *testing.T) {
	bot := &fakeBot{}
	r := &Router{Bot: bot, Calc: &fakeCalc{}}

	r.HandleUpdate(context.Background(), command(1, 1, "/engine", "/engine"))
	r.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 2})

	texts := bot.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Perintah tidak dikenal")
}

func TestRun_ProcessesUpdatesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{
		batches: [][]tgbotapi.Update{
			{plain(10, 1, "padi 2 6"), plain(11, 2, "jagung 1 8")},
			{command(12, 3, "/bantuan", "/bantuan")},
		},
		onEmpty: cancel,
	}
	calc := &fakeCalc{res: realisticResult()}
	r := &Router{Bot: bot, Calc: calc}

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("polling did not stop")
	}

	assert.Equal(t, []int{0, 12, 13}, bot.offsets[:3])
	assert.Len(t, calc.got, 2)
	assert.Len(t, bot.texts(), 5)
}

func TestRetryDelayFromError(t *testing.T) {
	assert.Zero(t, retryDelayFromError(nil))
	assert.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("too many requests")))
	assert.Equal(t, baseDelay, retryDelayFromError(errors.New("bad gateway")))
}
