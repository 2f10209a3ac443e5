package users

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// WalletEntry — движение по кошельку в памяти.
type WalletEntry struct {
	UserID    int64
	Amount    int64
	Kind      string
	Reference string
	At        time.Time
}

type memUser struct {
	mu   sync.Mutex
	user User
}

// MemoryStore — леджер в памяти. Карта защищена общим мьютексом только на
// время поиска записи, кошелёк каждого пользователя — своим мьютексом.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[int64]*memUser
	journal []WalletEntry
	jmu     sync.Mutex
}

// NewMemoryStore создаёт пустой леджер.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*memUser)}
}

func (s *MemoryStore) lookup(userID int64, create bool) *memUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok && create {
		u = &memUser{user: User{ID: userID, CreatedAt: time.Now()}}
		s.users[userID] = u
	}
	return u
}

func (s *MemoryStore) record(e WalletEntry) {
	e.At = time.Now()
	s.jmu.Lock()
	s.journal = append(s.journal, e)
	s.jmu.Unlock()
}

// Journal возвращает копию истории движений.
func (s *MemoryStore) Journal() []WalletEntry {
	s.jmu.Lock()
	defer s.jmu.Unlock()
	return append([]WalletEntry(nil), s.journal...)
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*User, error) {
	u := s.lookup(userID, false)
	if u == nil {
		return nil, common.ErrUserNotFound
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	cp := u.user
	cp.Inventory = append([]catalog.Item(nil), u.user.Inventory...)
	return &cp, nil
}

func applyProfile(u *User, p Profile) {
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
}

// UpsertProfile создаёт запись с пустым кошельком, минуя поимку.
// Используется тестами для наполнения хранилища.
func (s *MemoryStore) UpsertProfile(_ context.Context, p Profile) error {
	u := s.lookup(p.ID, true)
	u.mu.Lock()
	applyProfile(&u.user, p)
	u.mu.Unlock()
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, p Profile) error {
	u := s.lookup(p.ID, false)
	if u == nil {
		return nil
	}
	u.mu.Lock()
	applyProfile(&u.user, p)
	u.mu.Unlock()
	return nil
}

func (s *MemoryStore) AppendInventory(_ context.Context, p Profile, item catalog.Item) error {
	u := s.lookup(p.ID, true)
	u.mu.Lock()
	applyProfile(&u.user, p)
	u.user.Inventory = append(u.user.Inventory, item)
	u.mu.Unlock()
	return nil
}

func (s *MemoryStore) ConditionalDebit(_ context.Context, userID, amount int64, kind string) (bool, error) {
	if amount <= 0 {
		return false, common.ErrInvalidAmount
	}
	u := s.lookup(userID, false)
	if u == nil {
		return false, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.user.Wallet < amount {
		return false, nil
	}
	u.user.Wallet -= amount
	s.record(WalletEntry{UserID: userID, Amount: -amount, Kind: kind})
	return true, nil
}

func (s *MemoryStore) Credit(_ context.Context, userID, amount int64, kind string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	u := s.lookup(userID, false)
	if u == nil {
		return common.ErrUserNotFound
	}
	u.mu.Lock()
	if amount > math.MaxInt64-u.user.Wallet {
		u.mu.Unlock()
		return common.ErrInvalidAmount
	}
	u.user.Wallet += amount
	u.mu.Unlock()
	s.record(WalletEntry{UserID: userID, Amount: amount, Kind: kind})
	return nil
}

func (s *MemoryStore) Purchase(_ context.Context, userID int64, item catalog.Item, price int64, ref string) (int64, error) {
	if price <= 0 {
		return 0, common.ErrInvalidAmount
	}
	u := s.lookup(userID, false)
	if u == nil {
		return 0, common.ErrUserNotFound
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.user.Owns(item.ID) {
		return u.user.Wallet, common.ErrAlreadyOwned
	}
	if u.user.Wallet < price {
		return u.user.Wallet, common.ErrInsufficientBalance
	}
	u.user.Wallet -= price
	u.user.Inventory = append(u.user.Inventory, item)
	s.record(WalletEntry{UserID: userID, Amount: -price, Kind: TxPurchase, Reference: ref})
	return u.user.Wallet, nil
}

func (s *MemoryStore) SetFavorite(_ context.Context, userID int64, itemID string) error {
	u := s.lookup(userID, false)
	if u == nil {
		return common.ErrNotOwned
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.user.Owns(itemID) {
		return common.ErrNotOwned
	}
	u.user.FavoriteID = itemID
	return nil
}

func (s *MemoryStore) FindOwners(_ context.Context, name string, offset, limit int) ([]Owner, int, error) {
	s.mu.Lock()
	all := make([]*memUser, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	s.mu.Unlock()

	var owners []Owner
	for _, u := range all {
		u.mu.Lock()
		n := 0
		for _, it := range u.user.Inventory {
			if strings.EqualFold(it.Name, name) {
				n++
			}
		}
		if n > 0 {
			owners = append(owners, Owner{
				Profile: Profile{ID: u.user.ID, Username: u.user.Username, FirstName: u.user.FirstName},
				Count:   n,
			})
		}
		u.mu.Unlock()
	}
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].Count != owners[j].Count {
			return owners[i].Count > owners[j].Count
		}
		return owners[i].ID < owners[j].ID
	})

	total := len(owners)
	if offset >= total {
		return nil, total, nil
	}
	return owners[offset:min(offset+limit, total)], total, nil
}
