//go:build !integration

package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/qr"
	"telegram-loyalty-bot/internal/infra/worker"
	"telegram-loyalty-bot/internal/session"
	"telegram-loyalty-bot/internal/usecase"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// The engine tests wire real use cases on top of in-memory repositories, so
// a scenario runs the same code path as production minus Postgres, Redis and
// the Telegram API.

const testRewardSticker = "CAACAgIAAxkBAAIBTEST"

type memUserRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.UserProfile
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.UserProfile)}
}

func (m *memUserRepo) Save(_ context.Context, _ repository.Tx, u *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(_ context.Context, _ repository.Tx, tgID int64) (*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByUsernameExact(_ context.Context, _ repository.Tx, username string) (*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) SetPurchases(_ context.Context, _ repository.Tx, tgID int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PurchasesCount = count
	return nil
}

func (m *memUserRepo) List(_ context.Context, _ repository.Tx) ([]*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.UserProfile, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) ListIDs(_ context.Context, _ repository.Tx) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, 0, len(m.store))
	for id := range m.store {
		out = append(out, id)
	}
	return out, nil
}

func (m *memUserRepo) CountUsers(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

type memBaristaRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Barista
}

var _ repository.BaristaRepository = (*memBaristaRepo)(nil)

func newMemBaristaRepo() *memBaristaRepo {
	return &memBaristaRepo{store: make(map[string]*model.Barista)}
}

func (m *memBaristaRepo) IsActive(_ context.Context, _ repository.Tx, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[username]
	return ok && b.Active, nil
}

func (m *memBaristaRepo) Add(_ context.Context, _ repository.Tx, b *model.Barista) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	cp.Active = true
	m.store[b.Username] = &cp
	return nil
}

func (m *memBaristaRepo) Remove(_ context.Context, _ repository.Tx, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[username]
	if !ok || !b.Active {
		return domain.ErrNotFound
	}
	b.Active = false
	return nil
}

func (m *memBaristaRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Barista, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Barista
	for _, b := range m.store {
		if b.Active {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPromoRepo struct {
	mu    sync.RWMutex
	promo *model.Promotion
}

var _ repository.PromotionRepository = (*memPromoRepo)(nil)

func newMemPromoRepo(required int) *memPromoRepo {
	return &memPromoRepo{promo: &model.Promotion{
		ID:                1,
		Name:              "Каждый 7-й напиток бесплатно",
		RequiredPurchases: required,
		Description:       "Покажите QR-код при каждой покупке",
		Active:            true,
	}}
}

func (m *memPromoRepo) GetActive(_ context.Context, _ repository.Tx) (*model.Promotion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := *m.promo
	return &cp, nil
}

func (m *memPromoRepo) Update(_ context.Context, _ repository.Tx, upd model.PromotionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upd.Name != nil {
		m.promo.Name = *upd.Name
	}
	if upd.Description != nil {
		m.promo.Description = *upd.Description
	}
	if upd.RequiredPurchases != nil {
		m.promo.RequiredPurchases = *upd.RequiredPurchases
	}
	return nil
}

func (m *memPromoRepo) required() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.promo.RequiredPurchases
}

type memTxManager struct{}

var _ repository.TransactionManager = (*memTxManager)(nil)

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type memLocker struct{}

func (memLocker) TryLock(context.Context, string, time.Duration) (string, error) { return "token", nil }
func (memLocker) Unlock(context.Context, string, string) error                   { return nil }

type memMaintRepo struct {
	snapErr error
}

var _ repository.MaintenanceRepository = (*memMaintRepo)(nil)

func (m *memMaintRepo) Snapshot(context.Context) (string, error) {
	if m.snapErr != nil {
		return "", m.snapErr
	}
	return "/tmp/coffee_bot_test.dump", nil
}

func (m *memMaintRepo) PruneSnapshots(context.Context, int) (int, error) { return 0, nil }

// recBot records everything the engine sends.
type recBot struct {
	mu       sync.Mutex
	seq      int
	sent     []adapter.SendTextParams
	edits    []string
	photos   []int64
	docs     []int64
	stickers []int64
	deleted  []model.MessageRef
}

var _ adapter.TelegramBotAdapter = (*recBot)(nil)

func (b *recBot) SendText(_ context.Context, p adapter.SendTextParams) (model.MessageRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.sent = append(b.sent, p)
	return model.MessageRef{ChatID: p.ChatID, MessageID: b.seq}, nil
}

func (b *recBot) EditText(_ context.Context, _ model.MessageRef, text string, _ [][]adapter.InlineButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits = append(b.edits, text)
	return nil
}

func (b *recBot) SendPhoto(_ context.Context, chatID int64, _ []byte, _ string) (model.MessageRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.photos = append(b.photos, chatID)
	return model.MessageRef{ChatID: chatID, MessageID: b.seq}, nil
}

func (b *recBot) SendDocument(_ context.Context, chatID int64, _, _ string) (model.MessageRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.docs = append(b.docs, chatID)
	return model.MessageRef{ChatID: chatID, MessageID: b.seq}, nil
}

func (b *recBot) SendSticker(_ context.Context, chatID int64, _ string) (model.MessageRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.stickers = append(b.stickers, chatID)
	return model.MessageRef{ChatID: chatID, MessageID: b.seq}, nil
}

func (b *recBot) DeleteMessage(_ context.Context, ref model.MessageRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, ref)
	return nil
}

// lastText returns the most recent text sent to chatID.
func (b *recBot) lastText(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.sent) - 1; i >= 0; i-- {
		if b.sent[i].ChatID == chatID {
			return b.sent[i].Text
		}
	}
	return ""
}

func (b *recBot) textCount(chatID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.sent {
		if p.ChatID == chatID {
			n++
		}
	}
	return n
}

func (b *recBot) stickerCount(chatID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, id := range b.stickers {
		if id == chatID {
			n++
		}
	}
	return n
}

// waitSticker blocks until a sticker reached chatID or the deadline passes.
func (b *recBot) waitSticker(t *testing.T, chatID int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.stickerCount(chatID) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no sticker reached chat %d", chatID)
}

// waitText blocks until at least one text reached chatID or the deadline
// passes; used for deliveries that go through the worker pool.
func (b *recBot) waitText(t *testing.T, chatID int64) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.textCount(chatID) > 0 {
			return b.lastText(chatID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no message reached chat %d", chatID)
	return ""
}

type fixture struct {
	engine   *Engine
	bot      *recBot
	codec    *qr.Codec
	users    *memUserRepo
	baristas *memBaristaRepo
	promos   *memPromoRepo
	sessions *session.Store
}

func newFixture(t *testing.T, required int, adminIDs ...int64) *fixture {
	t.Helper()
	logger := zerolog.New(io.Discard)

	pool := worker.NewPool(4, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		pool.Stop()
		cancel()
	})

	f := &fixture{
		bot:      &recBot{},
		codec:    qr.NewCodec("coffeerina", 128),
		users:    newMemUserRepo(),
		baristas: newMemBaristaRepo(),
		promos:   newMemPromoRepo(required),
		sessions: session.NewStore(),
	}

	admins := model.NewAdminSet(adminIDs)
	tm := memTxManager{}
	f.engine = NewEngine(Deps{
		Bot:       f.bot,
		QR:        f.codec,
		Users:     usecase.NewUserUseCase(f.users, tm, &logger),
		Roles:     usecase.NewRoleUseCase(admins, f.baristas, &logger),
		Loyalty:   usecase.NewLoyaltyUseCase(f.users, f.promos, tm, memLocker{}, &logger),
		Promos:    usecase.NewPromotionUseCase(f.promos, &logger),
		Baristas:  usecase.NewBaristaUseCase(f.baristas, &logger),
		Broadcast: usecase.NewBroadcastUseCase(f.users, f.bot, pool, &logger),
		Backup:    usecase.NewBackupUseCase(&memMaintRepo{}, f.bot, adminIDs, 7, &logger),
		Sessions:  f.sessions,
		Pool:      pool,

		RewardSticker: testRewardSticker,
		Logger:        &logger,
	})
	return f
}

func (f *fixture) seedCustomer(t *testing.T, tgID int64, username string, count int) {
	t.Helper()
	u, err := model.NewUserProfile(tgID, username, "Гость", "")
	if err != nil {
		t.Fatalf("NewUserProfile: %v", err)
	}
	u.PurchasesCount = count
	if err := f.users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func (f *fixture) seedBarista(t *testing.T, username string) {
	t.Helper()
	b, err := model.NewBarista(username, "Бариста", "")
	if err != nil {
		t.Fatalf("NewBarista: %v", err)
	}
	if err := f.baristas.Add(context.Background(), repository.NoTX, b); err != nil {
		t.Fatalf("seed barista: %v", err)
	}
}

// setState pins a user's conversation state, as if they navigated there.
func (f *fixture) setState(tgID int64, st model.State) {
	conv, unlock := f.sessions.Lock(tgID)
	conv.State = st
	unlock()
}

func (f *fixture) state(t *testing.T, tgID int64) model.State {
	t.Helper()
	conv, ok := f.sessions.Peek(tgID)
	if !ok {
		t.Fatalf("no session for %d", tgID)
	}
	return conv.State
}

func (f *fixture) count(t *testing.T, tgID int64) int {
	t.Helper()
	u, err := f.users.FindByTelegramID(context.Background(), repository.NoTX, tgID)
	if err != nil {
		t.Fatalf("FindByTelegramID(%d): %v", tgID, err)
	}
	return u.PurchasesCount
}
