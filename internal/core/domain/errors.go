package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrEmptyRarityPool      = errors.New("no drawable components for rarity")
	ErrLotNotOpen           = errors.New("lot is not open")
	ErrSelfPurchase         = errors.New("seller cannot purchase own lot")
	ErrNotSeller            = errors.New("requester is not the lot seller")
	ErrNoVoucherAvailable   = errors.New("no discount voucher available")
	ErrEmptyOrder           = errors.New("order contains no recipes")
	ErrUnknownRarity        = errors.New("unknown rarity")

	// ErrReservationViolation means a seller's ledger quantity dropped below
	// the sum reserved in open lots. It indicates corrupted state, not user
	// error, and must never be repaired silently.
	ErrReservationViolation = errors.New("reservation exceeds owned quantity")
)
