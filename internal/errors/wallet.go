package errors

var (
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInsufficientOfflineBalance = &DomainError{
		Code:    "INSUFFICIENT_OFFLINE_BALANCE",
		Message: "insufficient offline wallet balance",
	}
	ErrInsufficientMerchantBalance = &DomainError{
		Code:    "INSUFFICIENT_MERCHANT_BALANCE",
		Message: "insufficient merchant balance",
	}
	ErrWalletLocked = &DomainError{
		Code:    "WALLET_LOCKED",
		Message: "wallet is locked",
	}
)
