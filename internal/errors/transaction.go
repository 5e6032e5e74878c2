package errors

var (
	ErrTransactionNotFound = &DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrAlreadyResolved = &DomainError{
		Code:    "ALREADY_RESOLVED",
		Message: "transaction is already resolved",
	}
	ErrDuplicateIntent = &DomainError{
		Code:    "DUPLICATE_INTENT",
		Message: "payment intent was already submitted",
	}
	ErrNotHeld = &DomainError{
		Code:    "NOT_HELD",
		Message: "transaction is not on risk hold",
	}
)
