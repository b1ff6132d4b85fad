package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Crayann/swiftbase-backend/internal/domain"
	"github.com/Crayann/swiftbase-backend/internal/pricing"
)

// GormStore is the MySQL-backed Store implementation
type GormStore struct {
	db *gorm.DB // Underlying connection pool
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateUser inserts a new user
func (s *GormStore) CreateUser(ctx context.Context, user *domain.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// GetUserByEmail fetches a user by login email
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// CreateRecipient inserts a new recipient
func (s *GormStore) CreateRecipient(ctx context.Context, recipient *domain.Recipient) error {
	return s.db.WithContext(ctx).Create(recipient).Error
}

// ListRecipients returns every recipient owned by the user
func (s *GormStore) ListRecipients(ctx context.Context, userID uint) ([]domain.Recipient, error) {
	var recipients []domain.Recipient
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&recipients).Error
	return recipients, err
}

// GetRecipient fetches a recipient only if the user owns it
func (s *GormStore) GetRecipient(ctx context.Context, id uuid.UUID, userID uint) (*domain.Recipient, error) {
	var recipient domain.Recipient
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&recipient).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &recipient, nil
}

// DeleteRecipient removes a recipient only if the user owns it
func (s *GormStore) DeleteRecipient(ctx context.Context, id uuid.UUID, userID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Recipient{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePaymentMethod inserts a new payment method
func (s *GormStore) CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod) error {
	return s.db.WithContext(ctx).Create(method).Error
}

// ListPaymentMethods returns every payment method owned by the user
func (s *GormStore) ListPaymentMethods(ctx context.Context, userID uint) ([]domain.PaymentMethod, error) {
	var methods []domain.PaymentMethod
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&methods).Error
	return methods, err
}

// GetPaymentMethod fetches a payment method only if the user owns it
func (s *GormStore) GetPaymentMethod(ctx context.Context, id uuid.UUID, userID uint) (*domain.PaymentMethod, error) {
	var method domain.PaymentMethod
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&method).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &method, nil
}

// DeletePaymentMethod removes a payment method only if the user owns it
func (s *GormStore) DeletePaymentMethod(ctx context.Context, id uuid.UUID, userID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTransaction inserts a new transaction record
func (s *GormStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

// GetTransaction fetches a transaction only if the user owns it
func (s *GormStore) GetTransaction(ctx context.Context, id uuid.UUID, userID uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &tx, nil
}

// ListTransactions returns one page of the user's transactions, newest first
func (s *GormStore) ListTransactions(ctx context.Context, userID uint, filter Filter) (Page, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page{}, err
	}
	var items []domain.Transaction
	if err := q.Order("created_at desc").Offset(filter.Offset).Limit(filter.Limit).Find(&items).Error; err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

// MarkCompleted performs the single atomic terminal update for a successful
// pipeline; the status guard keeps terminal rows immutable.
func (s *GormStore) MarkCompleted(ctx context.Context, id uuid.UUID, amountReceived decimal.Decimal, settlementRef string, completedAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(map[string]any{
			"status":          domain.StatusCompleted,
			"amount_received": amountReceived,
			"settlement_ref":  settlementRef,
			"completed_at":    completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records a pipeline failure; completed_at is deliberately not set
func (s *GormStore) MarkFailed(ctx context.Context, id uuid.UUID, notes string) error {
	res := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(map[string]any{
			"status": domain.StatusFailed,
			"notes":  notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelIfPending compare-and-swaps pending to failed in one statement
func (s *GormStore) CancelIfPending(ctx context.Context, id uuid.UUID, userID uint) (domain.TransactionStatus, error) {
	res := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, domain.StatusPending).
		Updates(map[string]any{
			"status": domain.StatusFailed,
			"notes":  "cancelled by user",
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 1 {
		return domain.StatusFailed, nil
	}
	// The swap lost; report the status the transaction is actually in
	var tx domain.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		return "", mapNotFound(err)
	}
	return tx.Status, ErrNotCancellable
}

// txAggregate is the scan target for the stats aggregates
type txAggregate struct {
	Count     int64
	SumAmount decimal.NullDecimal
	SumFee    decimal.NullDecimal
}

// Stats aggregates the user's transfer activity per status plus totals
func (s *GormStore) Stats(ctx context.Context, userID uint) (Stats, error) {
	stats := Stats{Counts: make(map[domain.TransactionStatus]int64)}

	var rows []struct {
		Status domain.TransactionStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("status, count(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return Stats{}, err
	}
	var total int64
	for _, r := range rows {
		stats.Counts[r.Status] = r.Count
		total += r.Count
	}

	var all txAggregate
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("count(*) as count, sum(amount_sent) as sum_amount, sum(fee) as sum_fee").
		Where("user_id = ?", userID).
		Scan(&all).Error; err != nil {
		return Stats{}, err
	}
	stats.TotalSent = nullOrZero(all.SumAmount)
	stats.TotalFees = nullOrZero(all.SumFee)
	if total > 0 {
		stats.AverageSent = stats.TotalSent.Div(decimal.NewFromInt(total)).Round(2)
	}

	// Savings realized on completed transfers: what the traditional baseline
	// would have charged minus what was actually paid. Only the aggregates
	// are needed since the baseline fee is linear in the amount.
	var completed txAggregate
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("count(*) as count, sum(amount_sent) as sum_amount, sum(fee) as sum_fee").
		Where("user_id = ? AND status = ?", userID, domain.StatusCompleted).
		Scan(&completed).Error; err != nil {
		return Stats{}, err
	}
	if completed.Count > 0 {
		baseline := pricing.BaselineFee(nullOrZero(completed.SumAmount))
		// BaselineFee adds its flat component once; add it for the remaining rows
		flatPerRow := pricing.BaselineFee(decimal.Zero)
		baseline = baseline.Add(flatPerRow.Mul(decimal.NewFromInt(completed.Count - 1)))
		stats.EstimatedSavings = baseline.Sub(nullOrZero(completed.SumFee)).Round(2)
	} else {
		stats.EstimatedSavings = decimal.Zero
	}
	return stats, nil
}

// nullOrZero unwraps a nullable decimal aggregate
func nullOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// mapNotFound converts gorm's record-not-found into the store sentinel
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
