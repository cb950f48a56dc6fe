package entity

// Account marks an address that has interacted with the protocol at
// least once. Existence is the whole record.
type Account struct {
	ID string
}

// ActiveAccount marks an (address, period bucket) pair as active.
// Created once, checked for presence, never updated.
type ActiveAccount struct {
	ID string // address "-" bucket
}

// UsageSnapshot is one hourly or daily usage-metrics record per
// period bucket.
type UsageSnapshot struct {
	ID       string
	Protocol string

	ActiveUsers           int64
	CumulativeUniqueUsers int64
	TransactionCount      int64

	DepositCount   int64
	WithdrawCount  int64
	BorrowCount    int64
	RepayCount     int64
	LiquidateCount int64

	BlockNumber int64
	Timestamp   int64
}
