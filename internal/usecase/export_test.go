package usecase

// SetSecretSource replaces the verification secret generator.
func (u *AccountUsecase) SetSecretSource(f func() (string, error)) {
	u.newSecret = f
}
