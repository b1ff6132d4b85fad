package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Crayann/swiftbase-backend/internal/domain"
	"github.com/Crayann/swiftbase-backend/internal/pricing"
)

// MemoryStore is an in-memory Store used for unit tests and DB-less dev
// runs. It mirrors the GormStore semantics exactly, including the
// conditional terminal updates.
type MemoryStore struct {
	mu           sync.Mutex
	nextUserID   uint
	users        map[uint]domain.User
	recipients   map[uuid.UUID]domain.Recipient
	methods      map[uuid.UUID]domain.PaymentMethod
	transactions map[uuid.UUID]domain.Transaction
}

// NewMemoryStore builds an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uint]domain.User),
		recipients:   make(map[uuid.UUID]domain.Recipient),
		methods:      make(map[uuid.UUID]domain.PaymentMethod),
		transactions: make(map[uuid.UUID]domain.Transaction),
	}
}

// CreateUser assigns the next id and stores the user. The duplicate email
// check mirrors the unique constraint MySQL enforces.
func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return errors.New("email already registered")
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	return nil
}

// GetUserByEmail scans for a user by login email
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// CreateRecipient stores the recipient
func (s *MemoryStore) CreateRecipient(_ context.Context, recipient *domain.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recipient.CreatedAt == 0 {
		recipient.CreatedAt = time.Now().UnixMilli()
	}
	s.recipients[recipient.ID] = *recipient
	return nil
}

// ListRecipients returns the user's recipients, newest first
func (s *MemoryStore) ListRecipients(_ context.Context, userID uint) ([]domain.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Recipient
	for _, r := range s.recipients {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// GetRecipient fetches a recipient only if the user owns it
func (s *MemoryStore) GetRecipient(_ context.Context, id uuid.UUID, userID uint) (*domain.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	recipient := r
	return &recipient, nil
}

// DeleteRecipient removes a recipient only if the user owns it
func (s *MemoryStore) DeleteRecipient(_ context.Context, id uuid.UUID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.recipients, id)
	return nil
}

// CreatePaymentMethod stores the payment method
func (s *MemoryStore) CreatePaymentMethod(_ context.Context, method *domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method.CreatedAt == 0 {
		method.CreatedAt = time.Now().UnixMilli()
	}
	s.methods[method.ID] = *method
	return nil
}

// ListPaymentMethods returns the user's payment methods, newest first
func (s *MemoryStore) ListPaymentMethods(_ context.Context, userID uint) ([]domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// GetPaymentMethod fetches a payment method only if the user owns it
func (s *MemoryStore) GetPaymentMethod(_ context.Context, id uuid.UUID, userID uint) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return nil, ErrNotFound
	}
	method := m
	return &method, nil
}

// DeletePaymentMethod removes a payment method only if the user owns it
func (s *MemoryStore) DeletePaymentMethod(_ context.Context, id uuid.UUID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return ErrNotFound
	}
	delete(s.methods, id)
	return nil
}

// CreateTransaction stores the transaction record
func (s *MemoryStore) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.transactions[tx.ID] = *tx
	return nil
}

// GetTransaction fetches a transaction only if the user owns it
func (s *MemoryStore) GetTransaction(_ context.Context, id uuid.UUID, userID uint) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	tx := t
	return &tx, nil
}

// ListTransactions returns one page of the user's transactions, newest first
func (s *MemoryStore) ListTransactions(_ context.Context, userID uint, filter Filter) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := filter.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return Page{Items: append([]domain.Transaction(nil), all[start:end]...), Total: total}, nil
}

// MarkCompleted applies the terminal success update if still processing
func (s *MemoryStore) MarkCompleted(_ context.Context, id uuid.UUID, amountReceived decimal.Decimal, settlementRef string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.Status != domain.StatusProcessing {
		return ErrNotFound
	}
	t.Status = domain.StatusCompleted
	t.AmountReceived = decimal.NewNullDecimal(amountReceived)
	t.SettlementRef = &settlementRef
	at := completedAt
	t.CompletedAt = &at
	s.transactions[id] = t
	return nil
}

// MarkFailed applies the terminal failure update if still processing
func (s *MemoryStore) MarkFailed(_ context.Context, id uuid.UUID, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.Status != domain.StatusProcessing {
		return ErrNotFound
	}
	t.Status = domain.StatusFailed
	n := notes
	t.Notes = &n
	s.transactions[id] = t
	return nil
}

// CancelIfPending compare-and-swaps pending to failed
func (s *MemoryStore) CancelIfPending(_ context.Context, id uuid.UUID, userID uint) (domain.TransactionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return "", ErrNotFound
	}
	if t.Status != domain.StatusPending {
		return t.Status, ErrNotCancellable
	}
	t.Status = domain.StatusFailed
	note := "cancelled by user"
	t.Notes = &note
	s.transactions[id] = t
	return domain.StatusFailed, nil
}

// Stats aggregates the user's transfer activity
func (s *MemoryStore) Stats(_ context.Context, userID uint) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		Counts:           make(map[domain.TransactionStatus]int64),
		TotalSent:        decimal.Zero,
		TotalFees:        decimal.Zero,
		AverageSent:      decimal.Zero,
		EstimatedSavings: decimal.Zero,
	}
	var total int64
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		total++
		stats.Counts[t.Status]++
		stats.TotalSent = stats.TotalSent.Add(t.AmountSent)
		stats.TotalFees = stats.TotalFees.Add(t.Fee)
		if t.Status == domain.StatusCompleted {
			saved := pricing.BaselineFee(t.AmountSent).Sub(t.Fee)
			stats.EstimatedSavings = stats.EstimatedSavings.Add(saved)
		}
	}
	if total > 0 {
		stats.AverageSent = stats.TotalSent.Div(decimal.NewFromInt(total)).Round(2)
	}
	stats.EstimatedSavings = stats.EstimatedSavings.Round(2)
	return stats, nil
}
