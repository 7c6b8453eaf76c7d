package handler

const (
	errInternalServer           = "Internal server error."
	errInternalRegister         = "Internal server error. Please try to register again."
	errInvalidRequestBody       = "Invalid request body."
	errUserExists               = "User already exists."
	errInvalidVerificationToken = "Invalid verification token."
	errInvalidCredentials       = "Invalid email or password."
	errAccountNotFound          = "Account not found."

	msgRegistered = "User registration complete."
	msgActivated  = "User activated."
	msgLoggedIn   = "User logged in."
)
