//go:build !integration

package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.UserProfile
	saveErr error
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.UserProfile)}
}

func (m *memUserRepo) Save(_ context.Context, _ repository.Tx, u *model.UserProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
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

// memBaristaRepo keeps the allow-list in a map keyed by username.
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

// memPromoRepo holds the single active promotion.
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
	if m.promo == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.promo
	return &cp, nil
}

func (m *memPromoRepo) Update(_ context.Context, _ repository.Tx, upd model.PromotionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.promo == nil {
		return domain.ErrNotFound
	}
	if upd.Name != nil {
		m.promo.Name = *upd.Name
	}
	if upd.Description != nil {
		m.promo.Description = *upd.Description
	}
	if upd.RequiredPurchases != nil {
		if err := model.ValidateThreshold(*upd.RequiredPurchases); err != nil {
			return err
		}
		m.promo.RequiredPurchases = *upd.RequiredPurchases
	}
	return nil
}

// memTxManager runs the function directly; unit tests have no database.
type memTxManager struct{}

var _ repository.TransactionManager = (*memTxManager)(nil)

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// memLocker records lock traffic and can simulate a busy lock.
type memLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	busyErr  error
	lastKey  string
}

func (m *memLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busyErr != nil {
		return "", m.busyErr
	}
	m.locks++
	m.lastKey = key
	return "token", nil
}

func (m *memLocker) Unlock(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocks++
	return nil
}

// mockBot is a hand mock of the transport port with overridable behavior.
type mockBot struct {
	mu       sync.Mutex
	seq      int
	sent     []adapter.SendTextParams
	deleted  []model.MessageRef
	SendFunc func(p adapter.SendTextParams) (model.MessageRef, error)
	DelFunc  func(ref model.MessageRef) error
}

var _ adapter.TelegramBotAdapter = (*mockBot)(nil)

func (m *mockBot) SendText(_ context.Context, p adapter.SendTextParams) (model.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendFunc != nil {
		ref, err := m.SendFunc(p)
		if err != nil {
			return model.MessageRef{}, err
		}
		m.sent = append(m.sent, p)
		return ref, nil
	}
	m.seq++
	m.sent = append(m.sent, p)
	return model.MessageRef{ChatID: p.ChatID, MessageID: m.seq}, nil
}

func (m *mockBot) EditText(context.Context, model.MessageRef, string, [][]adapter.InlineButton) error {
	return nil
}

func (m *mockBot) SendPhoto(_ context.Context, chatID int64, _ []byte, _ string) (model.MessageRef, error) {
	return model.MessageRef{ChatID: chatID, MessageID: 1}, nil
}

func (m *mockBot) SendDocument(_ context.Context, chatID int64, _, _ string) (model.MessageRef, error) {
	return model.MessageRef{ChatID: chatID, MessageID: 1}, nil
}

func (m *mockBot) SendSticker(_ context.Context, chatID int64, _ string) (model.MessageRef, error) {
	return model.MessageRef{ChatID: chatID, MessageID: 1}, nil
}

func (m *mockBot) DeleteMessage(_ context.Context, ref model.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DelFunc != nil {
		if err := m.DelFunc(ref); err != nil {
			return err
		}
	}
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *mockBot) sentTo(chatID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.sent {
		if p.ChatID == chatID {
			n++
		}
	}
	return n
}
