package evented

// RequireNotEmptyString checks that caller input is not empty.
func RequireNotEmptyString(value, errMsg string) *CommandError {
	if value == "" {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireNonZero checks that an identifier was supplied.
func RequireNonZero[T ~int | ~int32 | ~int64](value T, errMsg string) *CommandError {
	if value == 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequirePositive checks that a value is greater than zero.
func RequirePositive[T ~int | ~int32 | ~int64](value T, errMsg string) *CommandError {
	if value <= 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireNonNegative checks that a value is zero or greater.
func RequireNonNegative[T ~int | ~int32 | ~int64](value T, errMsg string) *CommandError {
	if value < 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}
