package store

import (
	"context" // Context for query deadlines
	"errors"  // Sentinel error matching

	"creativelens/internal/domain"     // Importing domain models
	"creativelens/internal/settlement" // Settlement store contract

	"gorm.io/gorm" // GORM ORM library
)

// GormStore is the MySQL-backed data store. It satisfies both the
// settlement.Store capability and the middleware.RoleSource used by the
// role guard.
type GormStore struct {
	db *gorm.DB // Underlying connection or, inside InTx, the transaction handle
}

// New wraps a gorm connection in a GormStore
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InTx runs fn inside a database transaction; any error from fn rolls back
// every write made through the transactional store
func (s *GormStore) InTx(ctx context.Context, fn func(tx settlement.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx}) // Hand fn a store bound to the transaction
	})
}

// RoleByEmail returns the stored role of the user with the given email
func (s *GormStore) RoleByEmail(ctx context.Context, email string) (string, error) {
	var user domain.User // Fetch user from database
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", err // Missing user is a guard failure, not a distinct error
	}
	return user.Role, nil
}

// CartItemByID loads a cart entry by primary key
func (s *GormStore) CartItemByID(ctx context.Context, id uint) (*domain.CartItem, error) {
	var item domain.CartItem // Fetch cart entry from database
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ClassByID loads a class by primary key
func (s *GormStore) ClassByID(ctx context.Context, id uint) (*domain.Class, error) {
	var class domain.Class // Fetch class from database
	if err := s.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// ReserveSeat takes one seat from the class with a conditional atomic
// update: the row only changes while seats_left is still positive, so two
// settlements racing for the last seat can never both succeed.
func (s *GormStore) ReserveSeat(ctx context.Context, classID uint) error {
	res := s.db.WithContext(ctx).Model(&domain.Class{}).
		Where("id = ? AND seats_left > 0", classID).
		Updates(map[string]any{
			"seats_left": gorm.Expr("seats_left - 1"), // Take the seat
			"enrolled":   gorm.Expr("enrolled + 1"),   // Count the enrollment
		})
	if res.Error != nil {
		return res.Error // Return error on query failure
	}
	// No row matched: the class is full (or gone)
	if res.RowsAffected == 0 {
		return settlement.ErrSeatUnavailable
	}
	return nil
}

// CreatePayment inserts a write-once payment row. The unique index on
// cart_item_id rejects a second payment for the same cart entry; that case
// is reported as ErrAlreadySettled so callers can tell a replayed
// settlement from a transient store failure.
func (s *GormStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		// Duplicate key means a payment already consumed this cart entry
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return settlement.ErrAlreadySettled
		}
		return err // Anything else is a genuine store failure
	}
	return nil
}

// DeleteCartItem removes a cart entry by primary key
func (s *GormStore) DeleteCartItem(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&domain.CartItem{}, id).Error
}

// CreditInstructor increments the instructor's student counter. The update
// is upsert-style: if no user row exists for the email a fresh instructor
// row is created with the counter at one (defensive, should not normally
// fire).
func (s *GormStore) CreditInstructor(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		Update("students", gorm.Expr("students + 1")) // Atomic increment
	if res.Error != nil {
		return res.Error // Return error on query failure
	}
	// No row matched: create the instructor with a single student
	if res.RowsAffected == 0 {
		return s.db.WithContext(ctx).Create(&domain.User{
			Email:    email,                 // Instructor email from the class row
			Role:     domain.RoleInstructor, // Instructors own classes
			Students: 1,                     // The enrollment being settled
		}).Error
	}
	return nil
}
