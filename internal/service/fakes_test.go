package service

import (
	"context"
	"sort"
	"strings"

	"networth/internal/coingecko"
	"networth/internal/domain"
	"networth/internal/store"

	"github.com/pkg/errors"
)

type fakeStore struct {
	nextID   uint
	users    map[string]*domain.User
	balances map[uint]map[string]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*domain.User{}, balances: map[uint]map[string]float64{}}
}

func (f *fakeStore) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.Name]; ok {
		return store.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Name] = &stored
	return nil
}

func (f *fakeStore) FindUser(_ context.Context, name string) (*domain.User, error) {
	user, ok := f.users[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (f *fakeStore) byID(id uint) (*domain.User, bool) {
	for _, u := range f.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (f *fakeStore) RenameUser(_ context.Context, id uint, newName string) error {
	if _, taken := f.users[newName]; taken {
		return store.ErrDuplicate
	}
	user, ok := f.byID(id)
	if !ok {
		return store.ErrNotFound
	}
	delete(f.users, user.Name)
	user.Name = newName
	f.users[newName] = user
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uint) error {
	user, ok := f.byID(id)
	if !ok {
		return store.ErrNotFound
	}
	delete(f.users, user.Name)
	delete(f.balances, id)
	return nil
}

func (f *fakeStore) AddBalance(_ context.Context, userID uint, symbol string, delta float64) (float64, error) {
	if f.balances[userID] == nil {
		f.balances[userID] = map[string]float64{}
	}
	f.balances[userID][symbol] += delta
	return f.balances[userID][symbol], nil
}

func (f *fakeStore) ListBalances(_ context.Context, userID uint) ([]domain.Balance, error) {
	var out []domain.Balance
	for symbol, amount := range f.balances[userID] {
		out = append(out, domain.Balance{UserID: userID, Symbol: symbol, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

type fakePrices struct {
	coins        map[string]bool
	prices       coingecko.Prices
	listErr      error
	priceErr     error
	listCalls    int
	priceCalls   int
	lastIDs      []string
	lastCurrency string
	onGetPrices  func()
}

func (f *fakePrices) CheckSymbol(_ context.Context, symbol string) (coingecko.SymbolStatus, error) {
	f.listCalls++
	if f.listErr != nil {
		return coingecko.SymbolUnknown, f.listErr
	}
	if f.coins[strings.ToLower(symbol)] {
		return coingecko.SymbolSupported, nil
	}
	return coingecko.SymbolUnsupported, nil
}

func (f *fakePrices) IsSymbolSupported(ctx context.Context, symbol string) bool {
	status, err := f.CheckSymbol(ctx, symbol)
	return err == nil && status == coingecko.SymbolSupported
}

func (f *fakePrices) GetPrices(_ context.Context, ids []string, currency string) (coingecko.Prices, error) {
	f.priceCalls++
	f.lastIDs = ids
	f.lastCurrency = currency
	if f.onGetPrices != nil {
		f.onGetPrices()
	}
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return f.prices, nil
}

type fakeSymbolCache struct {
	symbols map[string]bool
}

func (f *fakeSymbolCache) Has(_ context.Context, symbol string) bool {
	return f.symbols[strings.ToLower(symbol)]
}

func (f *fakeSymbolCache) Put(_ context.Context, symbol string) error {
	f.symbols[strings.ToLower(symbol)] = true
	return nil
}

type fakeNetWorthCache struct {
	entries       map[string]*domain.NetWorth
	versions      map[string]int64
	invalidateErr error
}

func cacheKey(user, currency string) string {
	return user + ":" + strings.ToLower(currency)
}

func (f *fakeNetWorthCache) Get(_ context.Context, user, currency string) (*domain.NetWorth, bool) {
	nw, ok := f.entries[cacheKey(user, currency)]
	return nw, ok
}

func (f *fakeNetWorthCache) Version(_ context.Context, user string) (int64, error) {
	return f.versions[user], nil
}

func (f *fakeNetWorthCache) Put(_ context.Context, user, currency string, nw *domain.NetWorth, version int64) (bool, error) {
	if f.versions[user] != version {
		return false, nil
	}
	f.entries[cacheKey(user, currency)] = nw
	return true, nil
}

func (f *fakeNetWorthCache) InvalidateAll(_ context.Context, user string) (int64, error) {
	if f.invalidateErr != nil {
		return 0, f.invalidateErr
	}
	f.versions[user]++
	var n int64
	for key := range f.entries {
		if strings.HasPrefix(key, user+":") {
			delete(f.entries, key)
			n++
		}
	}
	return n, nil
}

var errProviderDown = errors.New("provider down")
