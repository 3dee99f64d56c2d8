package settlement

import (
	"context" // Context for deadline propagation
	"errors"  // Sentinel errors

	"creativelens/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
)

// Settlement failure conditions, matched with errors.Is by the HTTP layer
var (
	ErrCartItemNotFound = errors.New("cart item not found")       // Referenced cart entry does not exist or belongs to someone else
	ErrClassNotFound    = errors.New("class not found")           // Referenced class does not exist
	ErrSeatUnavailable  = errors.New("no seats available")        // Class is fully booked
	ErrAlreadySettled   = errors.New("cart item already settled") // A payment already consumed this cart entry
)

// Store is the data-store capability settlement needs, injected so tests can
// run against an in-memory fake. InTx must give all-or-nothing semantics: if
// the callback returns an error, none of the writes made through its Store
// argument survive.
type Store interface {
	// InTx runs fn inside a single transaction
	InTx(ctx context.Context, fn func(tx Store) error) error
	// CartItemByID loads a cart entry by id
	CartItemByID(ctx context.Context, id uint) (*domain.CartItem, error)
	// ClassByID loads a class by id
	ClassByID(ctx context.Context, id uint) (*domain.Class, error)
	// ReserveSeat decrements seats_left and increments enrolled for the
	// class, but only while seats_left > 0; returns ErrSeatUnavailable
	// when the class is full
	ReserveSeat(ctx context.Context, classID uint) error
	// CreatePayment inserts a write-once payment row; must fail with
	// ErrAlreadySettled when a payment for the same cart item already
	// exists, and with the underlying error on any other failure
	CreatePayment(ctx context.Context, p *domain.Payment) error
	// DeleteCartItem removes a cart entry by id
	DeleteCartItem(ctx context.Context, id uint) error
	// CreditInstructor increments the instructor's student counter,
	// creating the row if it is somehow missing (upsert semantics)
	CreditInstructor(ctx context.Context, email string) error
}

// Request carries the inputs of a settlement: who paid, how much, and which
// cart entry and class the payment consumes
type Request struct {
	Email      string  // Paying user's email (already authenticated by the guard chain)
	Amount     float64 // Charged amount
	CartItemID uint    // Cart entry being consumed
	ClassID    uint    // Class being purchased
}

// Result reports the outcome of each sub-operation of a settlement so the
// caller can observe exactly what committed. Because the whole workflow runs
// in one transaction the flags are all true on success and all false on
// failure; the breakdown is kept for logging and the API response.
type Result struct {
	PaymentID          uint `json:"payment_id"`          // Id of the recorded payment
	PaymentRecorded    bool `json:"payment_recorded"`    // Step 1: payment row inserted
	CartCleared        bool `json:"cart_cleared"`        // Step 2: cart entry removed
	SeatReserved       bool `json:"seat_reserved"`       // Step 3: class counters updated
	InstructorCredited bool `json:"instructor_credited"` // Step 4: instructor counter updated
}

// Service runs the enrollment settlement workflow
type Service struct {
	store Store // Injected data-store capability
}

// NewService builds a settlement service on top of a store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Settle finalizes one enrollment after the payment gateway confirmed the
// charge: it records the payment, releases the cart slot, takes one seat
// from the class and credits the instructor. All four effects are applied
// in a single transaction, so a crash or a failed step leaves no partial
// trace and a retry can never double-decrement seats - the unique payment
// per cart item makes the whole workflow idempotent.
func (s *Service) Settle(ctx context.Context, req Request) (*Result, error) {
	res := &Result{} // Per-step outcome, filled in as the transaction progresses
	err := s.store.InTx(ctx, func(tx Store) error {
		// Resolve the cart entry and make sure it belongs to the payer
		// and references the class being paid for
		item, err := tx.CartItemByID(ctx, req.CartItemID)
		if err != nil || item.Email != req.Email || item.ClassID != req.ClassID {
			return ErrCartItemNotFound // Do not reveal other users' cart entries
		}
		// Resolve the class; settlement needs its instructor email
		class, err := tx.ClassByID(ctx, req.ClassID)
		if err != nil {
			return ErrClassNotFound
		}
		// Take a seat first: the conditional decrement is the step that
		// can legitimately fail, and failing here aborts the whole
		// workflow before anything else is written
		if err := tx.ReserveSeat(ctx, req.ClassID); err != nil {
			return err
		}
		res.SeatReserved = true
		// Record the write-once payment linking payer, cart entry,
		// class and instructor
		payment := &domain.Payment{
			Email:           req.Email,             // Paying user
			Amount:          req.Amount,            // Charged amount
			CartItemID:      req.CartItemID,        // Consumed cart entry
			ClassID:         req.ClassID,           // Purchased class
			InstructorEmail: class.InstructorEmail, // Taken from the class row, not the client
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			// ErrAlreadySettled when the cart entry was paid before;
			// anything else is a transient store failure the caller
			// may safely retry
			return err
		}
		res.PaymentID = payment.ID
		res.PaymentRecorded = true
		// Release the cart slot
		if err := tx.DeleteCartItem(ctx, req.CartItemID); err != nil {
			return err
		}
		res.CartCleared = true
		// Credit the instructor's student counter
		if err := tx.CreditInstructor(ctx, class.InstructorEmail); err != nil {
			return err
		}
		res.InstructorCredited = true
		return nil // Commit all four effects
	})
	// A rolled-back transaction leaves no partial trace; reset the flags so
	// the result never claims effects that did not commit
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email":        req.Email,      // Paying user
			"cart_item_id": req.CartItemID, // Consumed cart entry
			"class_id":     req.ClassID,    // Purchased class
			"error":        err.Error(),    // Failure reason
		}).Warn("Settlement aborted") // Log the aborted settlement
		return &Result{}, err
	}
	// Log the completed settlement
	logrus.WithFields(logrus.Fields{
		"email":      req.Email,     // Paying user
		"class_id":   req.ClassID,   // Purchased class
		"payment_id": res.PaymentID, // Recorded payment
		"amount":     req.Amount,    // Charged amount
	}).Info("Settlement completed")
	return res, nil
}
