package models

// User-facing notification messages shared by the server and the client.
const (
	MsgAccountCreated     = "Account created successfully!"
	MsgLoggedIn           = "Logged in successfully!"
	MsgLoginFailed        = "Failed to login. Please check your credentials."
	MsgGoogleLoggedIn     = "Logged in with Google successfully!"
	MsgGoogleLoginFailed  = "Failed to login with Google."
	MsgLoggedOut          = "Logged out successfully!"
	MsgLogoutFailed       = "Failed to logout."
	MsgResetSent          = "Password reset email sent!"
	MsgResetFailed        = "Failed to send password reset email."
	MsgProfileUpdated     = "Profile updated successfully!"
	MsgProfileFailed      = "Failed to update profile."
	MsgProfileLoadFailed  = "Failed to load profile"
	MsgProfileSaveFailed  = "Failed to update profile"
	MsgPasswordChanged    = "Password updated successfully!"
	MsgPasswordFailed     = "Failed to update password."
	MsgJobsLoadFailed     = "Failed to load jobs"
	MsgLoginToSave        = "Please login to save jobs"
	MsgJobIDMissing       = "Job ID is missing. Cannot save."
	MsgJobSaved           = "Job saved successfully"
	MsgJobRemoved         = "Job removed from saved jobs"
	MsgSaveFailed         = "Failed to save job. Please try again."
	MsgSavePermission     = "You do not have permission to save jobs. Please try logging in again."
	MsgSavedStatusFailed  = "Failed to check saved status"
	MsgSavedJobsLoadError = "Failed to load saved jobs"
)
